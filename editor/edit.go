package editor

import (
	"fmt"

	"github.com/milk9111/actskill/common"
	"github.com/milk9111/actskill/skill"
)

// AddState appends a state and selects it. An empty name uses
// skill.DefaultStateName.
func (s *Session) AddState(name string) (int, error) {
	if s.machine == nil {
		return -1, ErrNoMachine
	}
	if name == "" {
		name = skill.DefaultStateName
	}
	if st, _ := s.machine.FindState(name); st != nil {
		return -1, fmt.Errorf("%w: %q", ErrDuplicateStateName, name)
	}
	st := skill.NewStateConfig()
	st.StateName = name
	s.machine.States = append(s.machine.States, st)
	i := len(s.machine.States) - 1
	s.SelectState(i)
	return i, nil
}

// RenameState renames the selected state, keeping names unique.
func (s *Session) RenameState(name string) error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	if other, _ := s.machine.FindState(name); other != nil && other != st {
		return fmt.Errorf("%w: %q", ErrDuplicateStateName, name)
	}
	st.StateName = name
	return nil
}

func (s *Session) RemoveState(i int) error {
	if s.machine == nil {
		return ErrNoMachine
	}
	if i < 0 || i >= len(s.machine.States) {
		return fmt.Errorf("editor: remove state %d: %w", i, ErrNoSelection)
	}
	s.machine.States = append(s.machine.States[:i], s.machine.States[i+1:]...)
	s.follow()
	return nil
}

// SetFrameCount resizes the selected state's timeline. A frame selection
// past the new end stops resolving.
func (s *Session) SetFrameCount(n int) error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	st.SetFrameCount(n)
	s.resolveFrame()
	return nil
}

func (s *Session) NextFrame() error { return s.stepFrame(1) }
func (s *Session) PrevFrame() error { return s.stepFrame(-1) }

// stepFrame moves the frame cursor, wrapping at either end.
func (s *Session) stepFrame(delta int) error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	n := st.FrameCount()
	if n == 0 {
		return ErrNoSelection
	}
	next := s.frameIndex + delta
	switch {
	case next < 0:
		next = n - 1
	case next >= n:
		next = 0
	}
	s.SelectFrame(next)
	return nil
}

func (s *Session) FirstFrame() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	if st.FrameCount() == 0 {
		return ErrNoSelection
	}
	s.SelectFrame(0)
	return nil
}

func (s *Session) LastFrame() error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	if st.FrameCount() == 0 {
		return ErrNoSelection
	}
	s.SelectFrame(st.FrameCount() - 1)
	return nil
}

// AddAction appends a new action of kind to the selected state and selects
// it.
func (s *Session) AddAction(kind string) (int, error) {
	st, err := s.requireState()
	if err != nil {
		return -1, err
	}
	a, err := skill.NewAction(kind)
	if err != nil {
		return -1, err
	}
	i := st.ActionConfig.Add(a)
	s.SelectAction(i)
	return i, nil
}

func (s *Session) RemoveAction(i int) error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	if !st.ActionConfig.Remove(i) {
		return fmt.Errorf("editor: remove action %d: %w", i, ErrNoSelection)
	}
	s.follow()
	return nil
}

// MoveAction shifts the action at i by delta places in the list, clamped to
// the list bounds.
func (s *Session) MoveAction(i, delta int) error {
	st, err := s.requireState()
	if err != nil {
		return err
	}
	n := len(st.ActionConfig.Actions)
	if i < 0 || i >= n {
		return fmt.Errorf("editor: move action %d: %w", i, ErrNoSelection)
	}
	st.ActionConfig.Move(i, common.ClampInt(i+delta, 0, n-1))
	s.follow()
	return nil
}

// timelineAction returns the action at i and the frame count of its state.
func (s *Session) timelineAction(i int) (skill.Action, int, error) {
	st, err := s.requireState()
	if err != nil {
		return nil, 0, err
	}
	if i < 0 || i >= len(st.ActionConfig.Actions) || st.ActionConfig.Actions[i] == nil {
		return nil, 0, fmt.Errorf("editor: action %d: %w", i, ErrNoSelection)
	}
	return st.ActionConfig.Actions[i], st.FrameCount(), nil
}

// ResizeActionBegin drags the window's begin edge by delta frames; it never
// passes the end edge. Full actions and empty timelines are left alone and
// report false.
func (s *Session) ResizeActionBegin(i, delta int) (bool, error) {
	a, n, err := s.timelineAction(i)
	if err != nil || delta == 0 || n == 0 || a.Base().Full {
		return false, err
	}
	b := a.Base()
	begin, end := b.Span(n)
	next := common.ClampInt(begin+delta, 0, end)
	if next == begin {
		return false, nil
	}
	b.BeginFrame = next
	return true, nil
}

// ResizeActionEnd drags the window's end edge by delta frames, between the
// begin edge and the last frame.
func (s *Session) ResizeActionEnd(i, delta int) (bool, error) {
	a, n, err := s.timelineAction(i)
	if err != nil || delta == 0 || n == 0 || a.Base().Full {
		return false, err
	}
	b := a.Base()
	begin, end := b.Span(n)
	next := common.ClampInt(end+delta, begin, n-1)
	if next == end {
		return false, nil
	}
	b.EndFrame = next
	return true, nil
}

// ShiftAction moves the whole window by delta frames. The delta is reduced
// so the window stays on the timeline.
func (s *Session) ShiftAction(i, delta int) (bool, error) {
	a, n, err := s.timelineAction(i)
	if err != nil || delta == 0 || n == 0 || a.Base().Full {
		return false, err
	}
	b := a.Base()
	begin, end := b.Span(n)
	if delta > 0 {
		delta = min(end+delta, n-1) - end
	} else {
		delta = max(begin+delta, 0) - begin
	}
	if delta == 0 {
		return false, nil
	}
	b.BeginFrame = common.ClampInt(begin+delta, 0, n-1)
	b.EndFrame = common.ClampInt(end+delta, b.BeginFrame, n-1)
	return true, nil
}

func (s *Session) ToggleActionLoop(i int) error {
	a, _, err := s.timelineAction(i)
	if err != nil {
		return err
	}
	a.Base().Loop = !a.Base().Loop
	return nil
}
