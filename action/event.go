package action

import (
	"maps"

	"github.com/milk9111/actskill/skill"
)

// EventAction emits a named gameplay event when it activates and again when
// it deactivates, with "phase" set to "begin" or "end".
type EventAction struct {
	skill.ActionBase `yaml:",inline"`
	Name             string            `yaml:"name"`
	Payload          map[string]string `yaml:"payload,omitempty"`
}

func NewEventAction() *EventAction {
	return &EventAction{ActionBase: skill.NewActionBase()}
}

type eventHandler struct {
	name    string
	payload map[string]string
}

func (a *EventAction) Kind() string            { return KindEvent }
func (a *EventAction) Base() *skill.ActionBase { return &a.ActionBase }

func (a *EventAction) CreateHandler(host skill.Host) (skill.Handler, error) {
	if a.Name == "" {
		return nil, ErrEmptyName
	}
	h := &eventHandler{name: a.Name, payload: maps.Clone(a.Payload)}
	emit(host, h.name, h.event("begin"))
	return h, nil
}

func (a *EventAction) ReleaseHandler(host skill.Host, handler skill.Handler) {
	h, ok := handler.(*eventHandler)
	if !ok || h == nil {
		return
	}
	emit(host, h.name, h.event("end"))
}

func (h *eventHandler) event(phase string) map[string]any {
	out := make(map[string]any, len(h.payload)+1)
	for k, v := range h.payload {
		out[k] = v
	}
	out["phase"] = phase
	return out
}

func (a *EventAction) Clone() skill.Action {
	c := *a
	c.Payload = maps.Clone(a.Payload)
	return &c
}

func (a *EventAction) CopyFrom(other skill.Action) bool {
	if other == nil {
		return false
	}
	a.CopyBase(other.Base())
	o, ok := other.(*EventAction)
	if !ok {
		return false
	}
	a.Name = o.Name
	a.Payload = maps.Clone(o.Payload)
	return true
}
