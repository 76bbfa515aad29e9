package skill

// FrameConfig is one timeline slot. Frames have no identity beyond their
// index in the owning state.
type FrameConfig struct {
	AttackRange RangeConfig `yaml:"attack_range"`
	BodyRange   RangeConfig `yaml:"body_range"`
}

// RangeSelector picks one of a frame's range configs.
type RangeSelector func(*FrameConfig) *RangeConfig

func AttackRangeOf(f *FrameConfig) *RangeConfig { return &f.AttackRange }
func BodyRangeOf(f *FrameConfig) *RangeConfig   { return &f.BodyRange }

func (f *FrameConfig) Clone() *FrameConfig {
	c := &FrameConfig{}
	c.CopyFrom(f)
	return c
}

func (f *FrameConfig) CopyFrom(other *FrameConfig) {
	if other == nil || other == f {
		return
	}
	f.AttackRange.CopyFrom(&other.AttackRange)
	f.BodyRange.CopyFrom(&other.BodyRange)
}

// CloneFrames deep-copies a frame sequence. Nil entries become empty frames.
func CloneFrames(frames []*FrameConfig) []*FrameConfig {
	if frames == nil {
		return nil
	}
	out := make([]*FrameConfig, len(frames))
	for i, f := range frames {
		if f == nil {
			out[i] = &FrameConfig{}
			continue
		}
		out[i] = f.Clone()
	}
	return out
}
