package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/actskill/editor"
	"github.com/milk9111/actskill/hitbox"
	"github.com/milk9111/actskill/runner"
	"github.com/milk9111/actskill/skill"
	"github.com/milk9111/actskill/skills"
)

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// readAsset returns the asset text for a file path, or for an asset name
// resolved through the store.
func (e *env) readAsset(name string) ([]byte, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return os.ReadFile(name)
	}
	return e.store.Load(name)
}

func (e *env) loadAsset(name string) (*skill.MachineConfig, error) {
	data, err := e.readAsset(name)
	if err != nil {
		return nil, fmt.Errorf("skilltool: load %s: %w", name, err)
	}
	m, err := skills.DecodeNamed(name, data)
	if err != nil {
		return nil, err
	}
	if e.cfg.FrameRate > 0 {
		m.FrameRate = e.cfg.FrameRate
	}
	return m, nil
}

// validate decodes every asset and prints its warnings. Any decode failure
// fails the command once all assets were checked.
func (e *env) validate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: validate needs at least one asset", errUsage)
	}
	var failed error
	for _, name := range args {
		m, err := e.loadAsset(name)
		if err != nil {
			e.logger.Error("decode failed", "asset", name, "err", err)
			fmt.Fprintf(e.out, "%s: error: %v\n", name, err)
			failed = errors.Join(failed, err)
			continue
		}
		warnings := skill.Validate(m)
		if len(warnings) == 0 {
			fmt.Fprintf(e.out, "%s: ok (%d states)\n", name, len(m.States))
			continue
		}
		for _, w := range warnings {
			fmt.Fprintf(e.out, "%s: warning: %s\n", name, w)
		}
	}
	return failed
}

func (e *env) inspect(args []string) error {
	fs := newFlagSet("inspect")
	only := fs.String("state", "", "only this state")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: inspect needs one asset", errUsage)
	}
	m, err := e.loadAsset(fs.Arg(0))
	if err != nil {
		return err
	}

	found := false
	for _, st := range m.States {
		if *only != "" && st.StateName != *only {
			continue
		}
		found = true
		e.printState(st)
	}
	if *only != "" && !found {
		return fmt.Errorf("skilltool: state %q not found", *only)
	}
	return nil
}

func (e *env) printState(st *skill.StateConfig) {
	next := st.NextStateName
	if st.Loop {
		next = "(loop)"
	}
	fmt.Fprintf(e.out, "state %s: %d frames, anim %q, next %s (priority %d)\n",
		st.StateName, st.FrameCount(), st.DefaultAnimName(), next, st.NextStatePriority)

	attack := skill.BuildRangeIndex(st.Frames, skill.AttackRangeOf)
	body := skill.BuildRangeIndex(st.Frames, skill.BodyRangeOf)
	n := st.FrameCount()
	for f := 0; f < n; f++ {
		var active []string
		for i, a := range st.ActionConfig.Actions {
			if a != nil && a.Base().ActiveAt(f, n) {
				active = append(active, fmt.Sprintf("%d:%s", i, a.Kind()))
			}
		}
		fmt.Fprintf(e.out, "  %3d attack=%s body=%s actions=[%s]\n",
			f, formatRanges(attack, f), formatRanges(body, f), strings.Join(active, " "))
	}
}

func formatRanges(ix *skill.RangeIndex, frame int) string {
	rc, ok := ix.Resolve(frame)
	if !ok {
		return "base"
	}
	boxes := hitbox.BoundsOf(rc, cp.Vector{}, false)
	if len(boxes) == 0 {
		return "none"
	}
	parts := make([]string, len(boxes))
	for i, bb := range boxes {
		parts[i] = fmt.Sprintf("[%.2f %.2f %.2f %.2f]", bb.L, bb.B, bb.R, bb.T)
	}
	return strings.Join(parts, ",")
}

// kinds lists what an asset may name: action kinds, range kinds and easings.
func (e *env) kinds(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: kinds takes no arguments", errUsage)
	}
	fmt.Fprintf(e.out, "actions: %s\n", strings.Join(skill.ActionKinds(), " "))
	fmt.Fprintf(e.out, "ranges:  %s\n", strings.Join(skill.RangeKinds(), " "))
	fmt.Fprintf(e.out, "easings: %s\n", strings.Join(skill.Easings(), " "))
	return nil
}

type interrupt struct {
	state    string
	priority int
	frame    int
}

// parseInterrupt reads state:priority@frame.
func parseInterrupt(s string) (interrupt, error) {
	head, frame, ok := strings.Cut(s, "@")
	if !ok {
		return interrupt{}, fmt.Errorf("interrupt %q: missing @frame", s)
	}
	name, prio, ok := strings.Cut(head, ":")
	if !ok || name == "" {
		return interrupt{}, fmt.Errorf("interrupt %q: want state:priority@frame", s)
	}
	p, err := strconv.Atoi(prio)
	if err != nil {
		return interrupt{}, fmt.Errorf("interrupt %q: priority: %w", s, err)
	}
	f, err := strconv.Atoi(frame)
	if err != nil || f < 0 {
		return interrupt{}, fmt.Errorf("interrupt %q: bad frame %q", s, frame)
	}
	return interrupt{state: name, priority: p, frame: f}, nil
}

func (e *env) simulate(args []string) error {
	fs := newFlagSet("simulate")
	frames := fs.Int("frames", 60, "number of frames to step")
	start := fs.String("state", "", "state to start in instead of the default")
	var interrupts []interrupt
	fs.Func("interrupt", "request state:priority@frame (repeatable)", func(v string) error {
		in, err := parseInterrupt(v)
		if err != nil {
			return err
		}
		interrupts = append(interrupts, in)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: simulate needs one asset", errUsage)
	}
	m, err := e.loadAsset(fs.Arg(0))
	if err != nil {
		return err
	}

	tick := 0
	in := runner.New(m,
		runner.WithLogger(e.logger),
		runner.WithScriptLoader(e.store.LoadScript),
		runner.WithEventHandler(func(evt skill.Event) {
			fmt.Fprintf(e.out, "%4d %-12s %s@%d", tick, evt.Type, evt.State, evt.Frame)
			if evt.Kind != "" {
				fmt.Fprintf(e.out, " action=%d:%s", evt.Action, evt.Kind)
			}
			if len(evt.Payload) > 0 {
				fmt.Fprintf(e.out, " %v", evt.Payload)
			}
			fmt.Fprintln(e.out)
		}),
	)
	defer in.Dispose()

	if err := in.Start(); err != nil {
		return err
	}
	if *start != "" && !in.SwitchState(*start) {
		return fmt.Errorf("skilltool: state %q not found", *start)
	}
	for tick = 0; tick < *frames; tick++ {
		for _, req := range interrupts {
			if req.frame == tick && !in.RequestTransition(req.state, req.priority) {
				e.logger.Warn("interrupt rejected", "state", req.state, "priority", req.priority, "tick", tick)
			}
		}
		in.Step()
		if w := in.BlendWeight(); w < 1 {
			fmt.Fprintf(e.out, "%4d %-12s %.3f\n", tick, "blend", w)
		}
	}
	return nil
}

// preview plays a state's timeline the way the editor does, at the
// configured playback speed, printing the frame cursor after each tick.
func (e *env) preview(args []string) error {
	fs := newFlagSet("preview")
	name := fs.String("state", "", "state to play instead of the default")
	frames := fs.Int("frames", 30, "number of ticks")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: preview needs one asset", errUsage)
	}
	data, err := e.readAsset(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("skilltool: load %s: %w", fs.Arg(0), err)
	}
	s := editor.NewSession(editor.WithLogger(e.logger))
	if err := s.LoadText(data); err != nil {
		return err
	}

	m := s.Machine()
	if *name == "" {
		*name = m.DefaultStateName
	}
	_, i := m.FindState(*name)
	if i < 0 {
		return fmt.Errorf("skilltool: state %q not found", *name)
	}
	s.SelectState(i)

	rate := m.FrameRate
	if e.cfg.FrameRate > 0 {
		rate = e.cfg.FrameRate
	}
	if rate <= 0 {
		return fmt.Errorf("skilltool: frame rate %d is not positive", rate)
	}
	tick := time.Second / time.Duration(rate)

	p := s.NewPreview(e.cfg.PlaybackSpeed, e.cfg.FrameRate)
	p.Play()
	fmt.Fprintf(e.out, "preview %s at %d fps, speed %.2f\n", *name, rate, e.cfg.PlaybackSpeed)
	for n := 0; n < *frames; n++ {
		stepped := p.Tick(tick)
		fmt.Fprintf(e.out, "%4d frame=%d stepped=%d\n", n, s.FrameIndex(), stepped)
	}
	return nil
}

func (e *env) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch needs one directory", errUsage)
	}
	dir := args[0]

	lib := skills.NewLibrary(skills.WithLogger(e.logger))
	if err := lib.LoadDir(ctx, dir, e.cfg.LoadConcurrency); err != nil {
		e.logger.Warn("initial load incomplete", "dir", dir, "err", err)
	}
	e.logger.Info("skills loaded", "dir", dir, "names", lib.Names())

	dirs := []string{dir}
	if info, err := os.Stat(e.cfg.ScriptDir); err == nil && info.IsDir() {
		dirs = append(dirs, e.cfg.ScriptDir)
	}
	w, err := skills.NewWatcher(e.cfg.Debounce(), dirs...)
	if err != nil {
		return fmt.Errorf("skilltool: watch %s: %w", dir, err)
	}
	defer w.Close()

	if err := lib.Watch(ctx, w); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// copy puts part of an asset on the clipboard through an editor session.
// With -state the selected state's part is copied, otherwise the machine.
func (e *env) copy(args []string) error {
	fs := newFlagSet("copy")
	state := fs.String("state", "", "state to copy from")
	what := fs.String("what", "", "machine, state_setting, frames or action_config")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: copy needs one asset", errUsage)
	}
	data, err := e.readAsset(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("skilltool: load %s: %w", fs.Arg(0), err)
	}

	var sink editor.TextSink = writerSink{e.out}
	if e.cfg.MirrorClipboard {
		sink = &editor.SystemClipboard{}
	}
	clip := editor.NewClipboard()
	clip.Mirror = sink
	s := editor.NewSession(editor.WithLogger(e.logger), editor.WithClipboard(clip))
	if err := s.LoadText(data); err != nil {
		return err
	}

	kind := editor.ClipKind(*what)
	if *state != "" {
		_, i := s.Machine().FindState(*state)
		if i < 0 {
			return fmt.Errorf("skilltool: state %q not found", *state)
		}
		s.SelectState(i)
		if kind == "" {
			kind = editor.ClipStateSetting
		}
	} else if kind == "" {
		kind = editor.ClipMachine
	}

	switch kind {
	case editor.ClipMachine:
		err = s.CopyMachine()
	case editor.ClipStateSetting:
		err = s.CopyStateSetting()
	case editor.ClipFrames:
		err = s.CopyFrames()
	case editor.ClipActionConfig:
		err = s.CopyActionConfig()
	default:
		return fmt.Errorf("%w: cannot copy %q", errUsage, kind)
	}
	if err != nil {
		return err
	}
	e.logger.Info("copied", "kind", kind, "state", *state)
	return nil
}

// writerSink prints mirrored text instead of touching the OS clipboard.
type writerSink struct{ w io.Writer }

func (s writerSink) WriteText(data []byte) error {
	_, err := s.w.Write(data)
	return err
}
