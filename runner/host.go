package runner

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/milk9111/actskill/skill"
)

// actionHost is what one action slot sees of the instance. Events emitted
// through it are stamped with the slot's state, frame and index.
type actionHost struct {
	in    *Instance
	index int
	kind  string
}

func (h *actionHost) Emit(evt skill.Event) {
	evt.State = h.in.StateName()
	evt.Frame = h.in.frame
	evt.Action = h.index
	evt.Kind = h.kind
	h.in.emitter.Emit(evt)
}

func (h *actionHost) LoadScript(name string) ([]byte, error) {
	if h.in.scripts == nil {
		return nil, fmt.Errorf("runner: load script %s: %w", name, fs.ErrNotExist)
	}
	return h.in.scripts(name)
}

func (h *actionHost) Logger() *slog.Logger {
	return h.in.logger.With("state", h.in.StateName(), "action", h.index, "kind", h.kind)
}
