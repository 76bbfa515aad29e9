package editor

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/actskill/skill"
)

// ClipKind tags what the copy buffer holds. Pasting checks the tag.
type ClipKind string

const (
	ClipMachine      ClipKind = "machine"
	ClipStateSetting ClipKind = "state_setting"
	ClipFrames       ClipKind = "frames"
	ClipFrame        ClipKind = "frame"
	ClipActionConfig ClipKind = "action_config"
	ClipAction       ClipKind = "action"
	ClipRange        ClipKind = "range"
)

// TextSink receives the text form of whatever is copied.
type TextSink interface {
	WriteText(data []byte) error
}

// Clipboard is a single copy buffer. It holds deep copies, so later edits to
// the source never reach it, and every paste copies again.
type Clipboard struct {
	mu    sync.Mutex
	kind  ClipKind
	value any

	// Mirror, when set, also gets the copied value as YAML.
	Mirror TextSink
}

func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) Kind() ClipKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind
}

func (c *Clipboard) Empty() bool { return c.Kind() == "" }

func (c *Clipboard) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind, c.value = "", nil
}

func (c *Clipboard) put(kind ClipKind, value any) error {
	c.mu.Lock()
	c.kind, c.value = kind, value
	mirror := c.Mirror
	c.mu.Unlock()

	if mirror == nil {
		return nil
	}
	text, err := clipText(value)
	if err != nil {
		return fmt.Errorf("editor: mirror %s: %w", kind, err)
	}
	if err := mirror.WriteText(text); err != nil {
		return fmt.Errorf("editor: mirror %s: %w", kind, err)
	}
	return nil
}

func (c *Clipboard) get(kind ClipKind) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kind == "" {
		return nil, ErrClipboardEmpty
	}
	if c.kind != kind {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrClipboardKind, c.kind, kind)
	}
	return c.value, nil
}

func clipText(value any) ([]byte, error) {
	if a, ok := value.(skill.Action); ok {
		node, err := skill.EncodeAction(a)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	}
	return yaml.Marshal(value)
}

// SystemClipboard writes mirrored text to the OS clipboard. The clipboard is
// initialised on first use; headless hosts report the init error on every
// write.
type SystemClipboard struct {
	once sync.Once
	err  error
}

func (c *SystemClipboard) init() error {
	c.once.Do(func() { c.err = clipboard.Init() })
	if c.err != nil {
		return fmt.Errorf("editor: system clipboard: %w", c.err)
	}
	return nil
}

func (c *SystemClipboard) WriteText(data []byte) error {
	if err := c.init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// CopyMachine copies the whole state list along with the machine settings.
func (s *Session) CopyMachine() error {
	if s.machine == nil {
		return ErrNoMachine
	}
	return s.clip.put(ClipMachine, s.machine.Clone())
}

// PasteMachine replaces the edited machine's contents and clears the state
// selection.
func (s *Session) PasteMachine() error {
	if s.machine == nil {
		return ErrNoMachine
	}
	v, err := s.clip.get(ClipMachine)
	if err != nil {
		return err
	}
	s.machine.CopyFrom(v.(*skill.MachineConfig))
	s.SelectState(-1)
	s.resolveState()
	return nil
}

func (s *Session) CopyStateSetting() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	return s.clip.put(ClipStateSetting, st.CloneSetting())
}

// PasteStateSetting overwrites the selected state's settings. Frames and
// actions stay.
func (s *Session) PasteStateSetting() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	v, err := s.clip.get(ClipStateSetting)
	if err != nil {
		return err
	}
	st.CopySettingFrom(v.(*skill.StateConfig))
	return nil
}

func (s *Session) CopyFrames() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	frames := skill.CloneFrames(st.Frames)
	if frames == nil {
		frames = []*skill.FrameConfig{}
	}
	return s.clip.put(ClipFrames, frames)
}

// PasteFrames replaces the selected state's timeline and clears the frame
// selection.
func (s *Session) PasteFrames() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	v, err := s.clip.get(ClipFrames)
	if err != nil {
		return err
	}
	st.Frames = skill.CloneFrames(v.([]*skill.FrameConfig))
	s.frameIndex = -1
	s.resolveFrame()
	return nil
}

func (s *Session) CopyFrame() error {
	if s.frame == nil {
		return ErrNoSelection
	}
	return s.clip.put(ClipFrame, s.frame.Clone())
}

func (s *Session) PasteFrame() error {
	if s.frame == nil {
		return ErrNoSelection
	}
	v, err := s.clip.get(ClipFrame)
	if err != nil {
		return err
	}
	s.frame.CopyFrom(v.(*skill.FrameConfig))
	return nil
}

func (s *Session) CopyActionConfig() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	ac := st.ActionConfig.Clone()
	return s.clip.put(ClipActionConfig, &ac)
}

// PasteActionConfig replaces the selected state's action list and clears the
// action selection.
func (s *Session) PasteActionConfig() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	v, err := s.clip.get(ClipActionConfig)
	if err != nil {
		return err
	}
	st.ActionConfig.CopyFrom(v.(*skill.ActionConfig))
	s.actionIndex = -1
	s.resolveAction()
	return nil
}

func (s *Session) CopyAction() error {
	if s.action == nil {
		return ErrNoSelection
	}
	return s.clip.put(ClipAction, s.action.Clone())
}

// PasteAction copies the buffered action's window onto the selected action,
// and its settings too when both are the same kind. The selected action
// keeps its kind.
func (s *Session) PasteAction() error {
	if s.action == nil {
		return ErrNoSelection
	}
	v, err := s.clip.get(ClipAction)
	if err != nil {
		return err
	}
	if !s.action.CopyFrom(v.(skill.Action)) {
		s.logger.Debug("pasted action window only", "from", v.(skill.Action).Kind(), "to", s.action.Kind())
	}
	return nil
}

func (s *Session) CopyAttackRange() error { return s.copyRange(skill.AttackRangeOf) }
func (s *Session) CopyBodyRange() error   { return s.copyRange(skill.BodyRangeOf) }

func (s *Session) PasteAttackRange() error { return s.pasteRange(skill.AttackRangeOf) }
func (s *Session) PasteBodyRange() error   { return s.pasteRange(skill.BodyRangeOf) }

func (s *Session) copyRange(sel skill.RangeSelector) error {
	if s.frame == nil {
		return ErrNoSelection
	}
	rc := sel(s.frame).Clone()
	return s.clip.put(ClipRange, &rc)
}

func (s *Session) pasteRange(sel skill.RangeSelector) error {
	if s.frame == nil {
		return ErrNoSelection
	}
	v, err := s.clip.get(ClipRange)
	if err != nil {
		return err
	}
	sel(s.frame).CopyFrom(v.(*skill.RangeConfig))
	return nil
}
