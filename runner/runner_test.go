package runner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/milk9111/actskill/action"
	"github.com/milk9111/actskill/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttackThenIdle(t *testing.T) {
	p := newTally(t)
	m := machine("Idle",
		state("Idle", 1, true, ""),
		state("Attack", 3, false, "Idle", p.action("swing", false, 1, 2)),
	)
	in, rec := newInstance(m)
	require.NoError(t, in.Start())
	require.True(t, in.SwitchState("Attack"))
	assert.True(t, in.Started())

	assert.Equal(t, "Attack", in.StateName())
	assert.Equal(t, 0, in.Frame())
	assert.Same(t, m.States[1].ActionConfig.Actions[0], in.Action(0))
	assert.Nil(t, in.Action(1))
	assert.Equal(t, 0, p.creates)
	assert.False(t, in.IsActive(0))

	in.Step()
	assert.Equal(t, 1, in.Frame())
	assert.Equal(t, 1, p.creates)
	assert.True(t, in.IsActive(0))

	in.Step()
	assert.Equal(t, 2, in.Frame())
	assert.Equal(t, 1, p.creates)
	assert.Equal(t, 0, p.releases)

	in.Step()
	assert.Equal(t, "Idle", in.StateName())
	assert.Equal(t, 0, in.Frame())
	assert.Equal(t, 1, p.creates)
	assert.Equal(t, 1, p.releases)
	assert.Empty(t, in.ActiveActions())

	assert.Equal(t, []string{
		"state_enter Idle@0",
		"state_exit Idle@0",
		"state_enter Attack@0",
		"action_begin Attack@1",
		"action_end Attack@2",
		"state_exit Attack@2",
		"state_enter Idle@0",
	}, rec.describe())
}

func TestFullActionAcrossLoop(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 3, true, "", p.action("aura", true, 2, 2)))
	in, rec := newInstance(m)
	require.NoError(t, in.Start())
	assert.Equal(t, 1, p.creates)

	in.Advance(10)
	assert.Equal(t, 1, p.creates)
	assert.Equal(t, 0, p.releases)
	assert.Equal(t, 1, in.Frame())

	loops := 0
	for _, typ := range rec.types() {
		if typ == EventLoop {
			loops++
		}
	}
	assert.Equal(t, 3, loops)

	in.Dispose()
	assert.Equal(t, 1, p.releases)
}

func TestSingleFrameFullActionLoop(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 1, true, "", p.action("aura", true, 0, 0)))
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	in.Advance(5)
	assert.Equal(t, 1, p.creates)
	assert.Equal(t, 0, p.releases)
}

func TestWindowedActionRetriggersOnLoop(t *testing.T) {
	cases := []struct {
		name     string
		begin    int
		end      int
		loop     bool
		steps    int
		creates  int
		releases int
	}{
		{"middle_window", 1, 2, true, 8, 2, 2},
		{"middle_window_once", 1, 2, false, 8, 1, 1},
		{"first_frame", 0, 0, true, 4, 2, 1},
		{"first_frame_once", 0, 0, false, 4, 1, 1},
		{"whole_timeline", 0, 3, true, 9, 1, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := newTally(t)
			a := p.action("hit", false, c.begin, c.end)
			a.Loop = c.loop
			m := machine("Idle", state("Idle", 4, true, "", a))
			in, _ := newInstance(m)
			require.NoError(t, in.Start())
			in.Advance(c.steps)
			assert.Equal(t, c.creates, p.creates)
			assert.Equal(t, c.releases, p.releases)
		})
	}
}

func TestFullActionWithoutLoopStaysActive(t *testing.T) {
	p := newTally(t)
	a := p.action("aura", true, 0, 0)
	a.Loop = false
	m := machine("Idle", state("Idle", 2, true, "", a))
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	in.Advance(7)
	assert.Equal(t, 1, p.creates)
	assert.True(t, in.IsActive(0))
}

func TestLoopResetsOnStateEntry(t *testing.T) {
	p := newTally(t)
	a := p.action("once", false, 0, 0)
	a.Loop = false
	m := machine("A",
		state("A", 2, false, "B", a),
		state("B", 1, false, "A"),
	)
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	// A0 create, A1 release, B0, A0 create again
	in.Advance(3)
	assert.Equal(t, "A", in.StateName())
	assert.Equal(t, 2, p.creates)
	assert.Equal(t, 1, p.releases)
}

func TestSeekEvaluatesDestinationOnly(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 10, true, "", p.action("hit", false, 3, 5)))
	in, _ := newInstance(m)
	require.NoError(t, in.Start())

	in.Seek(9)
	in.Seek(1)
	assert.Equal(t, 0, p.creates, "windows crossed while seeking are not visited")

	in.Seek(4)
	assert.Equal(t, 1, p.creates)
	assert.True(t, in.IsActive(0))

	in.Seek(5)
	assert.Equal(t, 1, p.creates)

	in.Seek(8)
	assert.Equal(t, 1, p.releases)

	in.Seek(-3)
	assert.Equal(t, 0, in.Frame())
	in.Seek(99)
	assert.Equal(t, 9, in.Frame())
	assert.Equal(t, "Idle", in.StateName(), "seeking never resolves a transition")
}

func TestNextStateFallback(t *testing.T) {
	t.Run("missing_next_uses_default", func(t *testing.T) {
		m := machine("Idle",
			state("Idle", 1, true, ""),
			state("Attack", 2, false, "Recover"),
		)
		in, _ := newInstance(m)
		require.NoError(t, in.Start())
		require.True(t, in.SwitchState("Attack"))
		in.Advance(2)
		assert.Equal(t, "Idle", in.StateName())
		assert.False(t, in.Holding())
	})

	t.Run("empty_next_uses_default", func(t *testing.T) {
		m := machine("Idle",
			state("Idle", 1, true, ""),
			state("Attack", 1, false, ""),
		)
		in, _ := newInstance(m)
		require.NoError(t, in.Start())
		require.True(t, in.SwitchState("Attack"))
		in.Step()
		assert.Equal(t, "Idle", in.StateName())
	})

	t.Run("nothing_resolves_holds", func(t *testing.T) {
		p := newTally(t)
		m := machine("Idle",
			state("Idle", 1, true, ""),
			state("Attack", 3, false, "Recover", p.action("tail", false, 2, 2)),
		)
		in, rec := newInstance(m)
		require.NoError(t, in.Start())
		require.True(t, in.SwitchState("Attack"))
		m.DefaultStateName = "Gone"

		in.Advance(5)
		assert.True(t, in.Holding())
		assert.Equal(t, "Attack", in.StateName())
		assert.Equal(t, 2, in.Frame())
		assert.True(t, in.IsActive(0), "holding keeps the last frame's actions")

		holds := 0
		for _, typ := range rec.types() {
			if typ == EventHold {
				holds++
			}
		}
		assert.Equal(t, 1, holds)

		in.Dispose()
		assert.Equal(t, p.creates, p.releases)
	})
}

func TestEnterTransitionAndAnimation(t *testing.T) {
	attack := state("Attack", 1, false, "Idle")
	attack.NextStateTransition = skill.TransitionConfig{Duration: 0.2, Easing: "out_quad"}
	m := machine("Idle", state("Idle", 1, true, ""), attack)
	m.DefaultStateTransition = skill.TransitionConfig{Duration: 0.1}

	in, rec := newInstance(m)
	require.NoError(t, in.Start())
	assert.Equal(t, "Idle_anim", in.Animation())
	assert.Equal(t, m.DefaultStateTransition, in.Transition())

	require.True(t, in.SwitchState("Attack"))
	in.Step()
	assert.Equal(t, "Idle", in.StateName())
	assert.Equal(t, attack.NextStateTransition, in.Transition())

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventStateEnter, last.Type)
	assert.Equal(t, "Idle_anim", last.Payload["animation"])
}

func TestBlendWeightEasesIntoState(t *testing.T) {
	m := machine("Idle", state("Idle", 100, true, ""))
	m.FrameRate = 10
	m.DefaultStateTransition = skill.TransitionConfig{Duration: 1, Easing: "in_quad"}
	in, _ := newInstance(m)
	assert.Equal(t, 1.0, in.BlendWeight())

	require.NoError(t, in.Start())
	assert.Equal(t, 0.0, in.BlendWeight())

	assert.Equal(t, 5, in.Update(500*time.Millisecond))
	assert.InDelta(t, 0.25, in.BlendWeight(), 1e-4)

	assert.Equal(t, 6, in.Update(600*time.Millisecond))
	assert.Equal(t, 1.0, in.BlendWeight())

	m.DefaultStateTransition = skill.TransitionConfig{}
	require.True(t, in.SwitchState("Idle"))
	assert.Equal(t, 1.0, in.BlendWeight())
}

func TestRequestTransitionPriority(t *testing.T) {
	build := func() (*Instance, *tally) {
		p := newTally(t)
		attack := state("Attack", 5, false, "Idle", p.action("swing", true, 0, 0))
		attack.NextStatePriority = 5
		m := machine("Idle",
			state("Idle", 1, true, ""),
			attack,
			state("Hurt", 2, false, "Idle"),
			state("Dead", 1, true, ""),
		)
		in, _ := newInstance(m)
		require.NoError(t, in.Start())
		require.True(t, in.SwitchState("Attack"))
		return in, p
	}

	t.Run("outranked_request_dropped", func(t *testing.T) {
		in, p := build()
		require.True(t, in.RequestTransition("Hurt", 5))
		in.Step()
		assert.Equal(t, "Attack", in.StateName())
		assert.Equal(t, 1, in.Frame())
		in.Step()
		assert.Equal(t, 2, in.Frame(), "dropped request does not linger")
		assert.Equal(t, 0, p.releases)
	})

	t.Run("higher_priority_interrupts", func(t *testing.T) {
		in, p := build()
		in.Step()
		require.True(t, in.RequestTransition("Hurt", 6))
		in.Step()
		assert.Equal(t, "Hurt", in.StateName())
		assert.Equal(t, 0, in.Frame())
		assert.Equal(t, 1, p.releases)
	})

	t.Run("highest_pending_wins", func(t *testing.T) {
		in, _ := build()
		require.True(t, in.RequestTransition("Hurt", 7))
		assert.False(t, in.RequestTransition("Dead", 7), "tie keeps the earlier request")
		in.Step()
		assert.Equal(t, "Hurt", in.StateName())

		require.True(t, in.RequestTransition("Hurt", 1))
		require.True(t, in.RequestTransition("Dead", 2))
		in.Step()
		assert.Equal(t, "Dead", in.StateName())
	})

	t.Run("unknown_state_rejected", func(t *testing.T) {
		in, _ := build()
		assert.False(t, in.RequestTransition("Nope", 100))
	})
}

func TestStartWithoutDefaultState(t *testing.T) {
	p := newTally(t)
	m := machine("Missing", state("Idle", 2, true, "", p.action("a", true, 0, 0)))
	in, rec := newInstance(m)

	assert.ErrorIs(t, in.Start(), ErrNoRunnableState)
	assert.False(t, in.Started())
	in.Step()
	in.Seek(1)
	assert.False(t, in.SwitchState("Idle"))
	assert.False(t, in.RequestTransition("Idle", 9))
	assert.Nil(t, in.State())
	assert.Equal(t, 0, in.Update(time.Second))
	_, ok := in.AttackRange()
	assert.False(t, ok)
	assert.Zero(t, p.creates)
	assert.Empty(t, rec.events)

	assert.ErrorIs(t, New(nil).Start(), ErrNoRunnableState)
}

func TestDispose(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 4, true, "",
		p.action("a", true, 0, 0),
		p.action("b", false, 0, 1),
		p.action("c", false, 3, 3),
	))
	in, rec := newInstance(m)
	require.NoError(t, in.Start())
	assert.Equal(t, []int{0, 1}, in.ActiveActions())

	in.Dispose()
	assert.True(t, in.Disposed())
	assert.Equal(t, 2, p.releases)
	assert.Equal(t, []string{"create:a", "create:b", "release:a", "release:b"}, p.log)
	assert.Equal(t, EventStateExit, rec.events[len(rec.events)-1].Type)

	in.Dispose()
	in.Step()
	assert.Equal(t, 2, p.releases)
	assert.ErrorIs(t, in.Start(), ErrDisposed)
}

func TestCreateErrorStillReleases(t *testing.T) {
	p := newTally(t)
	a := p.action("bad", false, 0, 0)
	a.Fail = true
	m := machine("Idle", state("Idle", 2, true, "", a))
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	assert.True(t, in.IsActive(0))
	in.Step()
	assert.Equal(t, 1, p.creates)
	assert.Equal(t, 1, p.releases)
}

func TestProcessingOrderIsListOrder(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 3, true, "",
		p.action("late", false, 1, 2),
		p.action("early", false, 0, 1),
		p.action("also_late", false, 1, 1),
	))
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	in.Step()
	in.Step()
	assert.Equal(t, []string{
		"create:early",
		"create:late",
		"create:also_late",
		"release:early",
		"release:also_late",
	}, p.log)
}

func TestEmptyTimeline(t *testing.T) {
	m := machine("Idle",
		state("Idle", 1, true, ""),
		state("Blank", 0, false, "Idle"),
	)
	in, _ := newInstance(m)
	require.NoError(t, in.Start())
	require.True(t, in.SwitchState("Blank"))
	_, ok := in.BodyRange()
	assert.False(t, ok)
	in.Seek(3)
	assert.Equal(t, 0, in.Frame())
	in.Step()
	assert.Equal(t, "Idle", in.StateName())
}

func TestUpdateUsesFrameRate(t *testing.T) {
	m := machine("Idle", state("Idle", 100, true, ""))
	m.FrameRate = 10
	in, _ := newInstance(m)
	require.NoError(t, in.Start())

	assert.Equal(t, 2, in.Update(250*time.Millisecond))
	assert.Equal(t, 2, in.Frame())
	assert.Equal(t, 1, in.Update(60*time.Millisecond))
	assert.Equal(t, 3, in.Frame())
	assert.Equal(t, 0, in.Update(0))

	m.FrameRate = 0
	assert.Equal(t, 0, in.Update(time.Second))
}

func TestRangesFollowCursor(t *testing.T) {
	s := state("Attack", 4, true, "")
	s.Frames[1].AttackRange = skill.RangeConfig{ModifyRange: true, Ranges: []skill.Range{&skill.BoxRange{}}}
	s.Frames[3].BodyRange = skill.RangeConfig{ModifyRange: true}
	in, _ := newInstance(machine("Attack", s))
	require.NoError(t, in.Start())

	_, ok := in.AttackRange()
	assert.False(t, ok)

	in.Advance(2)
	rc, ok := in.AttackRange()
	require.True(t, ok)
	assert.Same(t, &s.Frames[1].AttackRange, rc)
	_, ok = in.BodyRange()
	assert.False(t, ok)

	in.Step()
	rc, ok = in.BodyRange()
	require.True(t, ok)
	assert.Same(t, &s.Frames[3].BodyRange, rc)
}

func TestActionEventsAreStamped(t *testing.T) {
	ev := action.NewEventAction()
	ev.Name = "hit"
	ev.BeginFrame, ev.EndFrame = 1, 1
	m := machine("Attack", state("Attack", 3, true, "", ev))

	in, rec := newInstance(m)
	require.NoError(t, in.Start())
	in.Advance(2)

	var hits []skill.Event
	for _, e := range rec.events {
		if e.Type == "hit" {
			hits = append(hits, e)
		}
	}
	require.Len(t, hits, 2)
	assert.Equal(t, "Attack", hits[0].State)
	assert.Equal(t, 1, hits[0].Frame)
	assert.Equal(t, 0, hits[0].Action)
	assert.Equal(t, action.KindEvent, hits[0].Kind)
	assert.Equal(t, "begin", hits[0].Payload["phase"])
	assert.Equal(t, 2, hits[1].Frame)
	assert.Equal(t, "end", hits[1].Payload["phase"])
}

func TestScriptActionUsesLoader(t *testing.T) {
	sc := action.NewScriptAction()
	sc.Script = "ping.tengo"
	sc.Full = true
	m := machine("Idle", state("Idle", 1, true, "", sc))
	src := []byte(`
on_create := func(engine, state) { engine.emit("ping") }
on_release := func(engine, state) { engine.emit("pong") }
`)
	in, rec := newInstance(m, WithScriptLoader(func(name string) ([]byte, error) {
		require.Equal(t, "ping.tengo", name)
		return src, nil
	}))
	require.NoError(t, in.Start())
	in.Dispose()

	var got []string
	for _, typ := range rec.types() {
		if typ == "ping" || typ == "pong" {
			got = append(got, typ)
		}
	}
	assert.Equal(t, []string{"ping", "pong"}, got)
}

func TestSharedMachineIndependentInstances(t *testing.T) {
	p := newTally(t)
	m := machine("Idle", state("Idle", 3, true, "", p.action("hit", false, 1, 1)))
	a, _ := newInstance(m)
	b, _ := newInstance(m)
	require.NoError(t, a.Start())
	require.NoError(t, b.Start())

	a.Step()
	assert.True(t, a.IsActive(0))
	assert.False(t, b.IsActive(0))
	assert.Equal(t, 0, b.Frame())
}

func TestHandlerPairingUnderRandomDriving(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	names := []string{"A", "B", "C", "D"}

	for trial := 0; trial < 50; trial++ {
		p := newTally(t)
		var states []*skill.StateConfig
		for _, name := range names {
			n := rng.Intn(6)
			var actions []skill.Action
			for k := rng.Intn(4); k > 0; k-- {
				begin := rng.Intn(7) - 1
				a := p.action(name, rng.Intn(4) == 0, begin, begin+rng.Intn(4))
				a.Loop = rng.Intn(3) != 0
				actions = append(actions, a)
			}
			next := names[rng.Intn(len(names))]
			if rng.Intn(5) == 0 {
				next = "Missing"
			}
			s := state(name, n, rng.Intn(3) == 0, next, actions...)
			s.NextStatePriority = rng.Intn(4)
			states = append(states, s)
		}
		in, _ := newInstance(machine("A", states...))
		require.NoError(t, in.Start())

		for op := 0; op < 200; op++ {
			switch rng.Intn(10) {
			case 0:
				in.Seek(rng.Intn(8) - 1)
			case 1:
				in.RequestTransition(names[rng.Intn(len(names))], rng.Intn(6))
			case 2:
				in.SwitchState(names[rng.Intn(len(names))])
			default:
				in.Step()
			}
			require.Equal(t, len(in.ActiveActions()), p.outstanding(), "trial %d op %d", trial, op)
			require.Len(t, p.live, p.outstanding())
		}

		in.Dispose()
		require.Equal(t, p.creates, p.releases, "trial %d", trial)
		require.Empty(t, p.live)
	}
}
