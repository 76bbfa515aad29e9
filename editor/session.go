// Package editor is the tooling side of a skill asset: selection cursors,
// structural edits, a typed copy buffer and frame preview. It has no UI of
// its own; front ends drive a Session and redraw from its getters.
package editor

import (
	"errors"
	"log/slog"

	"github.com/milk9111/actskill/skill"
	"github.com/milk9111/actskill/skills"
)

var (
	ErrNoMachine          = errors.New("editor: no machine loaded")
	ErrDuplicateStateName = errors.New("editor: duplicate state name")
	ErrNoSelection        = errors.New("editor: nothing selected")
	ErrClipboardEmpty     = errors.New("editor: clipboard is empty")
	ErrClipboardKind      = errors.New("editor: clipboard holds a different kind")
)

// Session edits one machine. Selection indices are kept as set even when
// they do not resolve; the Current* getters then return nil. Changing the
// resolved state clears the frame and action selection, and changing the
// resolved frame clears both range selections.
type Session struct {
	machine *skill.MachineConfig

	stateIndex       int
	frameIndex       int
	actionIndex      int
	attackRangeIndex int
	bodyRangeIndex   int

	state  *skill.StateConfig
	frame  *skill.FrameConfig
	action skill.Action

	clip   *Clipboard
	logger *slog.Logger
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClipboard shares a copy buffer between sessions.
func WithClipboard(c *Clipboard) Option {
	return func(s *Session) {
		if c != nil {
			s.clip = c
		}
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		stateIndex:       -1,
		frameIndex:       -1,
		actionIndex:      -1,
		attackRangeIndex: -1,
		bodyRangeIndex:   -1,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clip == nil {
		s.clip = NewClipboard()
	}
	return s
}

func (s *Session) Machine() *skill.MachineConfig { return s.machine }
func (s *Session) Clipboard() *Clipboard         { return s.clip }

// SetMachine replaces the edited machine and clears the state selection.
func (s *Session) SetMachine(m *skill.MachineConfig) {
	if s.machine == m {
		return
	}
	s.machine = m
	s.SelectState(-1)
	s.resolveState()
}

// Clear starts over with an empty machine.
func (s *Session) Clear() {
	s.SetMachine(skill.NewMachineConfig())
}

// LoadText decodes an asset and makes it the edited machine. On failure the
// current machine is kept.
func (s *Session) LoadText(text []byte) error {
	m, err := skills.Decode(text)
	if err != nil {
		s.logger.Error("editor reload failed", "err", err)
		return err
	}
	s.SetMachine(m)
	for _, w := range skill.Validate(m) {
		s.logger.Warn("skill content warning", "warning", w.String())
	}
	return nil
}

func (s *Session) SaveText() ([]byte, error) {
	if s.machine == nil {
		return nil, ErrNoMachine
	}
	return skills.Encode(s.machine)
}

// Warnings validates the edited machine.
func (s *Session) Warnings() []skill.Warning {
	if s.machine == nil {
		return nil
	}
	return skill.Validate(s.machine)
}

func (s *Session) StateIndex() int       { return s.stateIndex }
func (s *Session) FrameIndex() int       { return s.frameIndex }
func (s *Session) ActionIndex() int      { return s.actionIndex }
func (s *Session) AttackRangeIndex() int { return s.attackRangeIndex }
func (s *Session) BodyRangeIndex() int   { return s.bodyRangeIndex }

func (s *Session) CurrentState() *skill.StateConfig { return s.state }
func (s *Session) CurrentFrame() *skill.FrameConfig { return s.frame }
func (s *Session) CurrentAction() skill.Action      { return s.action }

func (s *Session) SelectState(i int) {
	if s.stateIndex == i {
		return
	}
	s.stateIndex = i
	s.resolveState()
}

func (s *Session) SelectFrame(i int) {
	if s.frameIndex == i {
		return
	}
	s.frameIndex = i
	s.resolveFrame()
}

func (s *Session) SelectAction(i int) {
	if s.actionIndex == i {
		return
	}
	s.actionIndex = i
	s.resolveAction()
}

func (s *Session) SelectAttackRange(i int) { s.attackRangeIndex = i }
func (s *Session) SelectBodyRange(i int)   { s.bodyRangeIndex = i }

func (s *Session) resolveState() {
	var st *skill.StateConfig
	if s.machine != nil && s.stateIndex >= 0 && s.stateIndex < len(s.machine.States) {
		st = s.machine.States[s.stateIndex]
	}
	if st == s.state {
		return
	}
	s.state = st
	s.frameIndex = -1
	s.actionIndex = -1
	s.resolveFrame()
	s.resolveAction()
}

func (s *Session) resolveFrame() {
	var f *skill.FrameConfig
	if s.state != nil && s.frameIndex >= 0 && s.frameIndex < len(s.state.Frames) {
		f = s.state.Frames[s.frameIndex]
	}
	if f == s.frame {
		return
	}
	s.frame = f
	s.attackRangeIndex = -1
	s.bodyRangeIndex = -1
}

func (s *Session) resolveAction() {
	var a skill.Action
	if s.state != nil && s.actionIndex >= 0 && s.actionIndex < len(s.state.ActionConfig.Actions) {
		a = s.state.ActionConfig.Actions[s.actionIndex]
	}
	s.action = a
}

// follow moves the state and action cursors to wherever their resolved
// entities ended up after a reorder, then re-resolves everything.
func (s *Session) follow() {
	if s.state != nil && s.machine != nil {
		s.stateIndex = -1
		for i, st := range s.machine.States {
			if st == s.state {
				s.stateIndex = i
				break
			}
		}
	}
	s.resolveState()
	if s.action != nil && s.state != nil {
		s.actionIndex = -1
		for i, a := range s.state.ActionConfig.Actions {
			if a == s.action {
				s.actionIndex = i
				break
			}
		}
	}
	s.resolveFrame()
	s.resolveAction()
}

func (s *Session) requireState() (*skill.StateConfig, error) {
	if s.machine == nil {
		return nil, ErrNoMachine
	}
	if s.state == nil {
		return nil, ErrNoSelection
	}
	return s.state, nil
}
