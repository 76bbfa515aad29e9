// Package runner executes a skill machine: it walks the frame cursor, keeps
// each action's handler alive exactly while its window contains the cursor,
// and resolves end-of-timeline transitions.
//
// An Instance is not safe for concurrent use. The machine it runs is treated
// as read-only and may be shared by any number of instances. Event handlers
// and action hooks must not call back into the instance, with the exception
// of RequestTransition.
package runner

import (
	"errors"
	"log/slog"
	"time"

	"github.com/tanema/gween"

	"github.com/milk9111/actskill/common"
	"github.com/milk9111/actskill/skill"
)

var (
	ErrNoRunnableState = errors.New("runner: no runnable state")
	ErrDisposed        = errors.New("runner: disposed")
)

// ScriptLoader resolves script names for script actions.
type ScriptLoader func(name string) ([]byte, error)

type Option func(*Instance)

func WithLogger(l *slog.Logger) Option {
	return func(in *Instance) {
		if l != nil {
			in.logger = l
		}
	}
}

func WithScriptLoader(fn ScriptLoader) Option {
	return func(in *Instance) { in.scripts = fn }
}

// WithEventHandler adds h to the instance's emitter. It may be given more
// than once.
func WithEventHandler(h EventHandler) Option {
	return func(in *Instance) {
		if h != nil {
			in.emitter.Handlers = append(in.emitter.Handlers, h)
		}
	}
}

type slot struct {
	action  skill.Action
	host    *actionHost
	handler skill.Handler
	active  bool
	// ran is set once the action has activated since the state was entered.
	ran bool
}

type request struct {
	state    *skill.StateConfig
	priority int
}

// Instance is one running skill.
type Instance struct {
	machine *skill.MachineConfig
	logger  *slog.Logger
	scripts ScriptLoader
	emitter Emitter

	state      *skill.StateConfig
	frame      int
	slots      []slot
	attackIx   *skill.RangeIndex
	bodyIx     *skill.RangeIndex
	transition skill.TransitionConfig
	tween      *gween.Tween
	blend      float64
	pending    *request
	accum      time.Duration

	started  bool
	holding  bool
	disposed bool
}

func New(machine *skill.MachineConfig, opts ...Option) *Instance {
	in := &Instance{
		machine: machine,
		logger:  slog.Default(),
		blend:   1,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Start enters the machine's default state. Calling it on a started instance
// restarts it. When the default state does not resolve the instance stays
// idle and every other call is a no-op.
func (in *Instance) Start() error {
	if in.disposed {
		return ErrDisposed
	}
	if in.started {
		in.exit()
		in.started = false
	}
	if in.machine == nil {
		return ErrNoRunnableState
	}
	s, _ := in.machine.FindState(in.machine.DefaultStateName)
	if s == nil {
		in.logger.Warn("default state not found", "state", in.machine.DefaultStateName)
		return ErrNoRunnableState
	}
	in.started = true
	in.pending = nil
	in.accum = 0
	in.enter(s, in.machine.DefaultStateTransition)
	return nil
}

func (in *Instance) running() bool {
	return in.started && !in.disposed && in.state != nil
}

// Step moves the cursor one frame forward. A pending transition request is
// applied instead of advancing when it outranks the current state.
func (in *Instance) Step() {
	if !in.running() {
		return
	}
	in.advanceBlend(in.machine.FrameDuration())
	if in.applyPending() {
		return
	}
	if in.holding {
		return
	}
	n := in.state.FrameCount()
	if n > 0 && in.frame < n-1 {
		in.frame++
		in.refresh()
		return
	}
	in.endOfTimeline()
}

// Advance runs n sequential Steps.
func (in *Instance) Advance(n int) {
	for i := 0; i < n && in.running(); i++ {
		in.Step()
	}
}

// Update converts elapsed wall-clock time into Steps at the machine's frame
// rate and returns how many were taken. Leftover time carries over.
//
// Every frame in between is stepped, so a large dt fires each action window
// it crosses and resolves each transition on the way. Use Seek to scrub: it
// evaluates only the destination frame.
func (in *Instance) Update(dt time.Duration) int {
	if !in.running() || dt <= 0 {
		return 0
	}
	fd := in.machine.FrameDuration()
	if fd <= 0 {
		return 0
	}
	in.accum += dt
	steps := 0
	for in.accum >= fd && in.running() {
		in.accum -= fd
		in.Step()
		steps++
	}
	return steps
}

// Seek moves the cursor to frame, clamped into the current state's timeline.
// Only the destination frame is evaluated: windows crossed on the way are
// not activated, and no end-of-timeline transition is resolved.
func (in *Instance) Seek(frame int) {
	if !in.running() {
		return
	}
	n := in.state.FrameCount()
	if n == 0 {
		return
	}
	in.frame = common.ClampInt(frame, 0, n-1)
	in.holding = false
	in.refresh()
}

// RequestTransition schedules an interrupt to the named state. Among pending
// requests the highest priority wins and a tie keeps the earlier one. The
// winner is applied on the next Step only if its priority is greater than the
// current state's NextStatePriority; otherwise it is dropped.
func (in *Instance) RequestTransition(name string, priority int) bool {
	if !in.running() {
		return false
	}
	s, _ := in.machine.FindState(name)
	if s == nil {
		in.logger.Warn("transition request to unknown state", "state", name)
		return false
	}
	if in.pending != nil && priority <= in.pending.priority {
		return false
	}
	in.pending = &request{state: s, priority: priority}
	return true
}

func (in *Instance) applyPending() bool {
	p := in.pending
	in.pending = nil
	if p == nil {
		return false
	}
	if p.priority <= in.state.NextStatePriority {
		in.logger.Debug("transition request outranked",
			"state", p.state.StateName, "priority", p.priority, "current_priority", in.state.NextStatePriority)
		return false
	}
	in.switchTo(p.state, in.machine.DefaultStateTransition)
	return true
}

// SwitchState leaves the current state and enters the named one immediately.
func (in *Instance) SwitchState(name string) bool {
	if !in.running() {
		return false
	}
	s, _ := in.machine.FindState(name)
	if s == nil {
		return false
	}
	in.pending = nil
	in.switchTo(s, in.machine.DefaultStateTransition)
	return true
}

// Dispose releases every active action and disables the instance.
func (in *Instance) Dispose() {
	if in.disposed {
		return
	}
	if in.started {
		in.exit()
	}
	in.disposed = true
	in.started = false
	in.pending = nil
}

func (in *Instance) endOfTimeline() {
	if in.state.Loop {
		in.frame = 0
		in.emit(EventLoop, -1, "", nil)
		in.refresh()
		return
	}

	next, _ := in.machine.FindState(in.state.NextStateName)
	trans := in.state.NextStateTransition
	if next == nil {
		next, _ = in.machine.FindState(in.machine.DefaultStateName)
		trans = in.machine.DefaultStateTransition
		if next != nil {
			in.logger.Warn("next state not found, using default",
				"state", in.state.StateName, "next", in.state.NextStateName, "default", next.StateName)
		}
	}
	if next == nil {
		in.logger.Warn("no state to transition to, holding last frame",
			"state", in.state.StateName, "next", in.state.NextStateName)
		in.holding = true
		in.emit(EventHold, -1, "", nil)
		return
	}
	in.switchTo(next, trans)
}

func (in *Instance) switchTo(s *skill.StateConfig, trans skill.TransitionConfig) {
	in.exit()
	in.enter(s, trans)
}

func (in *Instance) enter(s *skill.StateConfig, trans skill.TransitionConfig) {
	in.state = s
	in.frame = 0
	in.holding = false
	in.transition = trans
	in.tween = trans.NewTween()
	in.blend = 1
	if in.tween != nil {
		in.blend = 0
	}
	in.attackIx = skill.BuildRangeIndex(s.Frames, skill.AttackRangeOf)
	in.bodyIx = skill.BuildRangeIndex(s.Frames, skill.BodyRangeOf)

	in.slots = in.slots[:0]
	for _, a := range s.ActionConfig.Actions {
		if a == nil {
			continue
		}
		i := len(in.slots)
		in.slots = append(in.slots, slot{
			action: a,
			host:   &actionHost{in: in, index: i, kind: a.Kind()},
		})
	}

	in.emit(EventStateEnter, -1, "", map[string]any{
		"animation":  s.DefaultAnimName(),
		"transition": trans,
	})
	in.refresh()
}

// exit releases every active action in order and leaves the state.
func (in *Instance) exit() {
	if in.state == nil {
		return
	}
	for i := range in.slots {
		if in.slots[i].active {
			in.deactivate(i)
		}
	}
	in.emit(EventStateExit, -1, "", nil)
	in.slots = in.slots[:0]
	in.state = nil
}

// refresh brings every slot in line with the current frame, in list order.
// An action with Loop unset activates at most once per state entry.
func (in *Instance) refresh() {
	n := in.state.FrameCount()
	for i := range in.slots {
		sl := &in.slots[i]
		b := sl.action.Base()
		want := b.ActiveAt(in.frame, n)
		if want && !sl.active && !b.Loop && sl.ran {
			want = false
		}
		switch {
		case want && !sl.active:
			in.activate(i)
		case !want && sl.active:
			in.deactivate(i)
		}
	}
}

func (in *Instance) activate(i int) {
	sl := &in.slots[i]
	in.emit(EventActionBegin, i, sl.action.Kind(), nil)
	h, err := sl.action.CreateHandler(sl.host)
	sl.handler = h
	sl.active = true
	sl.ran = true
	if err != nil {
		in.logger.Error("create action handler failed",
			"state", in.state.StateName, "action", i, "kind", sl.action.Kind(), "err", err)
		return
	}
	in.logger.Debug("action begin", "state", in.state.StateName, "frame", in.frame, "action", i, "kind", sl.action.Kind())
}

func (in *Instance) deactivate(i int) {
	sl := &in.slots[i]
	sl.action.ReleaseHandler(sl.host, sl.handler)
	sl.handler = nil
	sl.active = false
	in.logger.Debug("action end", "state", in.state.StateName, "frame", in.frame, "action", i, "kind", sl.action.Kind())
	in.emit(EventActionEnd, i, sl.action.Kind(), nil)
}

func (in *Instance) emit(typ string, action int, kind string, payload map[string]any) {
	in.emitter.Emit(skill.Event{
		Type:    typ,
		State:   in.StateName(),
		Frame:   in.frame,
		Action:  action,
		Kind:    kind,
		Payload: payload,
	})
}

// State is the current state, or nil before Start and after Dispose.
func (in *Instance) State() *skill.StateConfig {
	if !in.running() {
		return nil
	}
	return in.state
}

func (in *Instance) StateName() string {
	if in.state == nil {
		return ""
	}
	return in.state.StateName
}

func (in *Instance) Frame() int { return in.frame }

// Animation is the current state's default animation name.
func (in *Instance) Animation() string {
	if in.state == nil {
		return ""
	}
	return in.state.DefaultAnimName()
}

// Transition is the blend that applied when the current state was entered.
func (in *Instance) Transition() skill.TransitionConfig { return in.transition }

// BlendWeight is the eased 0..1 weight of the transition into the current
// state, advanced one frame duration per Step. It is 1 once the blend is over
// or when the state was entered with an instant cut.
func (in *Instance) BlendWeight() float64 { return in.blend }

func (in *Instance) advanceBlend(dt time.Duration) {
	if in.tween == nil || dt <= 0 {
		return
	}
	v, done := in.tween.Update(float32(dt.Seconds()))
	in.blend = float64(v)
	if done {
		in.tween = nil
		in.blend = 1
	}
}

// AttackRange resolves the attack range in effect at the current frame.
// false means the caller should use its base collider.
func (in *Instance) AttackRange() (*skill.RangeConfig, bool) {
	if !in.running() || in.attackIx.Len() == 0 {
		return nil, false
	}
	return in.attackIx.Resolve(in.frame)
}

// BodyRange resolves the body range in effect at the current frame.
func (in *Instance) BodyRange() (*skill.RangeConfig, bool) {
	if !in.running() || in.bodyIx.Len() == 0 {
		return nil, false
	}
	return in.bodyIx.Resolve(in.frame)
}

// ActiveActions lists the indices of active actions in list order.
func (in *Instance) ActiveActions() []int {
	var out []int
	for i := range in.slots {
		if in.slots[i].active {
			out = append(out, i)
		}
	}
	return out
}

func (in *Instance) IsActive(i int) bool {
	return i >= 0 && i < len(in.slots) && in.slots[i].active
}

// Action returns the action in slot i of the current state.
func (in *Instance) Action(i int) skill.Action {
	if i < 0 || i >= len(in.slots) {
		return nil
	}
	return in.slots[i].action
}

func (in *Instance) Holding() bool  { return in.holding }
func (in *Instance) Started() bool  { return in.started }
func (in *Instance) Disposed() bool { return in.disposed }
