package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/milk9111/actskill/skill"
)

// tally counts handler lifecycle calls and checks they pair up.
type tally struct {
	t        *testing.T
	creates  int
	releases int
	live     map[int]bool
	next     int
	log      []string
}

func newTally(t *testing.T) *tally {
	return &tally{t: t, live: map[int]bool{}}
}

func (p *tally) outstanding() int { return p.creates - p.releases }

type tallyAction struct {
	skill.ActionBase
	Name  string
	Fail  bool
	tally *tally
}

func (p *tally) action(name string, full bool, begin, end int) *tallyAction {
	return &tallyAction{
		ActionBase: skill.ActionBase{Full: full, BeginFrame: begin, EndFrame: end, Loop: true},
		Name:       name,
		tally:      p,
	}
}

func (a *tallyAction) Kind() string            { return "tally" }
func (a *tallyAction) Base() *skill.ActionBase { return &a.ActionBase }

func (a *tallyAction) CreateHandler(skill.Host) (skill.Handler, error) {
	p := a.tally
	p.creates++
	p.next++
	id := p.next
	p.live[id] = true
	p.log = append(p.log, "create:"+a.Name)
	if a.Fail {
		return id, errors.New("tally failure")
	}
	return id, nil
}

func (a *tallyAction) ReleaseHandler(_ skill.Host, h skill.Handler) {
	p := a.tally
	id, ok := h.(int)
	if !ok || !p.live[id] {
		p.t.Errorf("release of unknown handler %v for %s", h, a.Name)
		return
	}
	delete(p.live, id)
	p.releases++
	p.log = append(p.log, "release:"+a.Name)
}

func (a *tallyAction) Clone() skill.Action {
	c := *a
	return &c
}

func (a *tallyAction) CopyFrom(other skill.Action) bool {
	a.CopyBase(other.Base())
	return false
}

func state(name string, frames int, loop bool, next string, actions ...skill.Action) *skill.StateConfig {
	s := skill.NewStateConfig()
	s.StateName = name
	s.Loop = loop
	s.NextStateName = next
	s.SetFrameCount(frames)
	s.Animations = []string{name + "_anim"}
	s.ActionConfig.Actions = actions
	return s
}

func machine(def string, states ...*skill.StateConfig) *skill.MachineConfig {
	m := skill.NewMachineConfig()
	m.DefaultStateName = def
	m.States = states
	return m
}

type recorder struct {
	events []skill.Event
}

func (r *recorder) handle(evt skill.Event) { r.events = append(r.events, evt) }

func (r *recorder) types() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) describe() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, fmt.Sprintf("%s %s@%d", e.Type, e.State, e.Frame))
	}
	return out
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newInstance(m *skill.MachineConfig, opts ...Option) (*Instance, *recorder) {
	rec := &recorder{}
	opts = append([]Option{WithLogger(quietLogger()), WithEventHandler(rec.handle)}, opts...)
	return New(m, opts...), rec
}
