package skill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bruteResolve(frames []*FrameConfig, i int, sel RangeSelector) (*RangeConfig, bool) {
	found := -1
	for j := 0; j <= i; j++ {
		if sel(frames[j]).ModifyRange {
			found = j
		}
	}
	if found < 0 {
		return nil, false
	}
	return sel(frames[found]), true
}

func TestResolveRange(t *testing.T) {
	frames := []*FrameConfig{
		{},
		{AttackRange: modifying(box(1))},
		{},
		{AttackRange: RangeConfig{ModifyRange: false, Ranges: []Range{box(99)}}},
		{AttackRange: modifying(box(4)), BodyRange: modifying(box(40))},
		{},
	}

	cases := []struct {
		name  string
		index int
		sel   RangeSelector
		want  int // source frame, -1 = none
	}{
		{"before_first_override", 0, AttackRangeOf, -1},
		{"on_override", 1, AttackRangeOf, 1},
		{"inherits_previous", 2, AttackRangeOf, 1},
		{"ignores_non_modifying_ranges", 3, AttackRangeOf, 1},
		{"new_override", 4, AttackRangeOf, 4},
		{"tail_inherits", 5, AttackRangeOf, 4},
		{"body_none_before", 3, BodyRangeOf, -1},
		{"body_tail", 5, BodyRangeOf, 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rc, ok := ResolveRange(frames, c.index, c.sel)
			if c.want < 0 {
				assert.False(t, ok)
				assert.Nil(t, rc)
				return
			}
			require.True(t, ok)
			assert.Same(t, c.sel(frames[c.want]), rc)
		})
	}
}

func TestResolveRangeNoOverrideAnywhere(t *testing.T) {
	frames := make([]*FrameConfig, 8)
	for i := range frames {
		frames[i] = &FrameConfig{BodyRange: RangeConfig{Ranges: []Range{box(float64(i))}}}
	}
	for i := range frames {
		rc, ok := ResolveRange(frames, i, AttackRangeOf)
		assert.False(t, ok, "attack frame %d", i)
		assert.Nil(t, rc)
		rc, ok = ResolveRange(frames, i, BodyRangeOf)
		assert.False(t, ok, "body frame %d", i)
		assert.Nil(t, rc)
	}
}

func TestResolveRangeMatchesNearestOverride(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(20)
		frames := make([]*FrameConfig, n)
		for i := range frames {
			f := &FrameConfig{}
			if rng.Intn(3) == 0 {
				f.AttackRange = modifying(box(float64(i)))
			}
			if rng.Intn(4) == 0 {
				f.BodyRange = modifying(box(float64(-i)))
			}
			frames[i] = f
		}
		attackIx := BuildRangeIndex(frames, AttackRangeOf)
		bodyIx := BuildRangeIndex(frames, BodyRangeOf)
		require.Equal(t, n, attackIx.Len())

		for i := 0; i < n; i++ {
			want, wantOK := bruteResolve(frames, i, AttackRangeOf)
			got, ok := ResolveRange(frames, i, AttackRangeOf)
			require.Equal(t, wantOK, ok, "trial %d frame %d", trial, i)
			require.Same(t, want, got)

			got, ok = attackIx.Resolve(i)
			require.Equal(t, wantOK, ok)
			require.Same(t, want, got)

			want, wantOK = bruteResolve(frames, i, BodyRangeOf)
			got, ok = bodyIx.Resolve(i)
			require.Equal(t, wantOK, ok)
			require.Same(t, want, got)
		}
	}
}

func TestResolveRangeOutOfBoundsPanics(t *testing.T) {
	frames := []*FrameConfig{{}, {}}
	assert.Panics(t, func() { ResolveRange(frames, -1, AttackRangeOf) })
	assert.Panics(t, func() { ResolveRange(frames, 2, AttackRangeOf) })
	assert.Panics(t, func() { ResolveRange(nil, 0, BodyRangeOf) })
	assert.Panics(t, func() { BuildRangeIndex(frames, AttackRangeOf).Resolve(5) })
}

func TestStateRangeHelpersSkipNilFrames(t *testing.T) {
	s := NewStateConfig()
	s.Frames = []*FrameConfig{{AttackRange: modifying(box(1))}, nil, {}}
	rc, ok := s.AttackRange(2)
	require.True(t, ok)
	assert.Same(t, &s.Frames[0].AttackRange, rc)
	_, ok = s.BodyRange(2)
	assert.False(t, ok)
}
