package runner

import "github.com/milk9111/actskill/skill"

// Runtime event types. Actions may emit any other type through their host.
const (
	EventStateEnter  = "state_enter"
	EventStateExit   = "state_exit"
	EventActionBegin = "action_begin"
	EventActionEnd   = "action_end"
	EventLoop        = "loop"
	EventHold        = "hold"
)

// EventHandler receives runtime and action events.
type EventHandler func(evt skill.Event)

// Emitter fans an event out to every handler in order.
type Emitter struct {
	Handlers []EventHandler
}

// Emit sends an event to all handlers.
func (e *Emitter) Emit(evt skill.Event) {
	if e == nil || len(e.Handlers) == 0 {
		return
	}
	for _, h := range e.Handlers {
		if h != nil {
			h(evt)
		}
	}
}
