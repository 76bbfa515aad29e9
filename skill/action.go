package skill

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/milk9111/actskill/common"
	"gopkg.in/yaml.v3"
)

// ActionBase is the frame window shared by every action kind. BeginFrame and
// EndFrame only matter when Full is false.
type ActionBase struct {
	Full       bool `yaml:"full"`
	BeginFrame int  `yaml:"begin_frame"`
	EndFrame   int  `yaml:"end_frame"`
	Loop       bool `yaml:"loop"`
}

// NewActionBase returns the window new actions start with.
func NewActionBase() ActionBase {
	return ActionBase{Loop: true}
}

// Span returns the window clamped into [0, frameCount-1] with begin <= end.
// Full actions span the whole timeline.
func (b *ActionBase) Span(frameCount int) (begin, end int) {
	if b.Full {
		return 0, frameCount - 1
	}
	begin = common.ClampInt(b.BeginFrame, 0, frameCount-1)
	end = common.ClampInt(b.EndFrame, begin, frameCount-1)
	return begin, end
}

// ActiveAt reports whether the action's window contains frame. A timeline
// without frames has no active actions.
func (b *ActionBase) ActiveAt(frame, frameCount int) bool {
	if frameCount <= 0 || frame < 0 || frame >= frameCount {
		return false
	}
	if b.Full {
		return true
	}
	begin, end := b.Span(frameCount)
	return frame >= begin && frame <= end
}

// Clamped reports whether the authored window had to be clamped to fit.
func (b *ActionBase) Clamped(frameCount int) bool {
	if b.Full || frameCount <= 0 {
		return false
	}
	begin, end := b.Span(frameCount)
	return begin != b.BeginFrame || end != b.EndFrame
}

func (b *ActionBase) CopyBase(other *ActionBase) {
	if other == nil {
		return
	}
	*b = *other
}

// Handler is whatever an action hands back from CreateHandler. The runtime
// only stores it and passes it back to ReleaseHandler.
type Handler any

// Event is emitted by the runtime and by action handlers.
type Event struct {
	Type    string
	State   string
	Frame   int
	Action  int
	Kind    string
	Payload map[string]any
}

// Host is the runtime side offered to action handlers.
type Host interface {
	Emit(evt Event)
	LoadScript(name string) ([]byte, error)
	Logger() *slog.Logger
}

// Action is one timed effect. Implementations keep only configuration; the
// live state of an activation belongs in the Handler.
//
// ReleaseHandler is called exactly once for every CreateHandler call, with
// whatever CreateHandler returned, even when it also returned an error.
type Action interface {
	Kind() string
	Base() *ActionBase
	CreateHandler(host Host) (Handler, error)
	ReleaseHandler(host Host, h Handler)
	Clone() Action
	// CopyFrom copies other's window and, when other is the same kind, its
	// settings. It reports whether the settings were copied.
	CopyFrom(other Action) bool
}

var actionRegistry = map[string]func() Action{}

// RegisterAction registers an action factory by kind. Called from init() of
// packages providing action kinds.
func RegisterAction(kind string, factory func() Action) {
	actionRegistry[kind] = factory
}

// NewAction creates an action of the given kind with its default settings.
func NewAction(kind string) (Action, error) {
	factory, ok := actionRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionKind, kind)
	}
	return factory(), nil
}

// ActionKinds lists the registered action kinds in sorted order.
func ActionKinds() []string {
	kinds := make([]string, 0, len(actionRegistry))
	for k := range actionRegistry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// EncodeAction encodes a single action with its kind tag.
func EncodeAction(a Action) (*yaml.Node, error) {
	node, err := encodeKinded(a.Kind(), a)
	if err != nil {
		return nil, fmt.Errorf("skill: encode action %s: %w", a.Kind(), err)
	}
	return node, nil
}

// DecodeAction decodes a kind-tagged action node.
func DecodeAction(node *yaml.Node) (Action, error) {
	kind, err := nodeKind(node)
	if err != nil {
		return nil, err
	}
	a, err := NewAction(kind)
	if err != nil {
		return nil, fmt.Errorf("skill: line %d: %w", node.Line, err)
	}
	if err := node.Decode(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ActionConfig is a state's ordered action list. Order is display order and
// processing order; it is never re-sorted.
type ActionConfig struct {
	Actions []Action
}

type actionConfigOut struct {
	Actions []*yaml.Node `yaml:"actions"`
}

type actionConfigIn struct {
	Actions []yaml.Node `yaml:"actions"`
}

func (ac ActionConfig) MarshalYAML() (any, error) {
	out := actionConfigOut{Actions: make([]*yaml.Node, 0, len(ac.Actions))}
	for _, a := range ac.Actions {
		if a == nil {
			continue
		}
		node, err := EncodeAction(a)
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, node)
	}
	return out, nil
}

func (ac *ActionConfig) UnmarshalYAML(value *yaml.Node) error {
	var in actionConfigIn
	if err := value.Decode(&in); err != nil {
		return err
	}
	var actions []Action
	for i := range in.Actions {
		node := &in.Actions[i]
		if isNull(node) {
			continue
		}
		a, err := DecodeAction(node)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}
	ac.Actions = actions
	return nil
}

func (ac *ActionConfig) Clone() ActionConfig {
	var c ActionConfig
	c.CopyFrom(ac)
	return c
}

// CopyFrom replaces the list with clones of other's actions.
func (ac *ActionConfig) CopyFrom(other *ActionConfig) {
	if other == nil || other == ac {
		return
	}
	var actions []Action
	for _, a := range other.Actions {
		if a != nil {
			actions = append(actions, a.Clone())
		}
	}
	ac.Actions = actions
}

// Add appends a and returns its index.
func (ac *ActionConfig) Add(a Action) int {
	ac.Actions = append(ac.Actions, a)
	return len(ac.Actions) - 1
}

// Remove deletes the action at i, keeping the order of the rest.
func (ac *ActionConfig) Remove(i int) bool {
	if i < 0 || i >= len(ac.Actions) {
		return false
	}
	ac.Actions = append(ac.Actions[:i], ac.Actions[i+1:]...)
	return true
}

// Move relocates the action at from to index to.
func (ac *ActionConfig) Move(from, to int) bool {
	n := len(ac.Actions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}
	a := ac.Actions[from]
	ac.Actions = append(ac.Actions[:from], ac.Actions[from+1:]...)
	ac.Actions = append(ac.Actions[:to], append([]Action{a}, ac.Actions[to:]...)...)
	return true
}
