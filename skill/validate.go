package skill

import "fmt"

// WarningCode classifies a content problem. None of them stop a machine from
// running; the runtime clamps or falls back instead.
type WarningCode string

const (
	WarnDuplicateState    WarningCode = "duplicate_state"
	WarnUnresolvedNext    WarningCode = "unresolved_next_state"
	WarnUnresolvedDefault WarningCode = "unresolved_default_state"
	WarnWindowClamped     WarningCode = "window_clamped"
	WarnAnimIndex         WarningCode = "anim_index"
	WarnUnknownEasing     WarningCode = "unknown_easing"
	WarnFrameRate         WarningCode = "frame_rate"
	WarnEmptyTimeline     WarningCode = "empty_timeline"
)

// Warning is one content problem. Index is the action index for window
// warnings and -1 otherwise.
type Warning struct {
	Code    WarningCode
	State   string
	Index   int
	Message string
}

func (w Warning) String() string {
	if w.State == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s: state %q: %s", w.Code, w.State, w.Message)
}

// Validate reports content problems in m in a stable order.
func Validate(m *MachineConfig) []Warning {
	if m == nil {
		return nil
	}
	var out []Warning
	add := func(code WarningCode, state string, index int, format string, args ...any) {
		out = append(out, Warning{Code: code, State: state, Index: index, Message: fmt.Sprintf(format, args...)})
	}

	if m.FrameRate <= 0 {
		add(WarnFrameRate, "", -1, "frame rate %d is not positive", m.FrameRate)
	}
	if s, _ := m.FindState(m.DefaultStateName); s == nil {
		add(WarnUnresolvedDefault, "", -1, "default state %q not found", m.DefaultStateName)
	}
	if _, ok := m.DefaultStateTransition.EaseFunc(); !ok {
		add(WarnUnknownEasing, "", -1, "unknown easing %q", m.DefaultStateTransition.Easing)
	}
	for _, name := range m.DuplicateStateNames() {
		add(WarnDuplicateState, name, -1, "state name used more than once")
	}

	for _, s := range m.States {
		if s == nil {
			continue
		}
		n := s.FrameCount()
		if n == 0 {
			add(WarnEmptyTimeline, s.StateName, -1, "state has no frames")
		}
		if len(s.Animations) > 0 && s.AnimName(s.DefaultAnimIndex) == "" {
			add(WarnAnimIndex, s.StateName, -1, "default anim index %d outside %d animations", s.DefaultAnimIndex, len(s.Animations))
		}
		if !s.Loop {
			if next, _ := m.FindState(s.NextStateName); next == nil {
				add(WarnUnresolvedNext, s.StateName, -1, "next state %q not found, default state is used", s.NextStateName)
			}
			if _, ok := s.NextStateTransition.EaseFunc(); !ok {
				add(WarnUnknownEasing, s.StateName, -1, "unknown easing %q", s.NextStateTransition.Easing)
			}
		}
		for i, a := range s.ActionConfig.Actions {
			if a == nil {
				continue
			}
			b := a.Base()
			if b.Clamped(n) {
				begin, end := b.Span(n)
				add(WarnWindowClamped, s.StateName, i, "%s window [%d, %d] clamped to [%d, %d]", a.Kind(), b.BeginFrame, b.EndFrame, begin, end)
			}
		}
	}
	return out
}
