package skill

import "fmt"

// ResolveRange returns the range config in effect at frameIndex: the nearest
// frame at or before it whose selected config has ModifyRange set. It reports
// false when no such frame exists, in which case the caller falls back to its
// own base collider.
//
// frameIndex must lie in [0, len(frames)-1]; anything else is a programming
// error in the driver and panics instead of resolving the wrong frame.
func ResolveRange(frames []*FrameConfig, frameIndex int, sel RangeSelector) (*RangeConfig, bool) {
	if frameIndex < 0 || frameIndex >= len(frames) {
		panic(fmt.Sprintf("skill: resolve range at frame %d outside [0, %d)", frameIndex, len(frames)))
	}
	for i := frameIndex; i >= 0; i-- {
		f := frames[i]
		if f == nil {
			continue
		}
		if rc := sel(f); rc != nil && rc.ModifyRange {
			return rc, true
		}
	}
	return nil, false
}

// RangeIndex caches, per frame, which frame's override is in effect. It must
// be rebuilt after the frames it was built from are edited.
type RangeIndex struct {
	frames []*FrameConfig
	sel    RangeSelector
	source []int
}

// BuildRangeIndex precomputes ResolveRange for every frame in one pass.
func BuildRangeIndex(frames []*FrameConfig, sel RangeSelector) *RangeIndex {
	ix := &RangeIndex{frames: frames, sel: sel, source: make([]int, len(frames))}
	last := -1
	for i, f := range frames {
		if f != nil {
			if rc := sel(f); rc != nil && rc.ModifyRange {
				last = i
			}
		}
		ix.source[i] = last
	}
	return ix
}

// Len is the number of indexed frames.
func (ix *RangeIndex) Len() int { return len(ix.source) }

// Resolve has the same contract as ResolveRange.
func (ix *RangeIndex) Resolve(frameIndex int) (*RangeConfig, bool) {
	if frameIndex < 0 || frameIndex >= len(ix.source) {
		panic(fmt.Sprintf("skill: resolve range at frame %d outside [0, %d)", frameIndex, len(ix.source)))
	}
	src := ix.source[frameIndex]
	if src < 0 {
		return nil, false
	}
	return ix.sel(ix.frames[src]), true
}
