package skill

import "gopkg.in/yaml.v3"

const DefaultStateName = "New State"

// StateConfig is one phase of a skill. len(Frames) is the state's frame count.
type StateConfig struct {
	StateName           string           `yaml:"state_name"`
	DefaultAnimIndex    int              `yaml:"default_anim_index"`
	Animations          []string         `yaml:"animations"`
	Loop                bool             `yaml:"loop"`
	NextStateName       string           `yaml:"next_state_name"`
	NextStatePriority   int              `yaml:"next_state_priority"`
	NextStateTransition TransitionConfig `yaml:"next_state_transition"`
	Frames              []*FrameConfig   `yaml:"frames"`
	ActionConfig        ActionConfig     `yaml:"action_config"`
}

func NewStateConfig() *StateConfig {
	return &StateConfig{
		StateName:         DefaultStateName,
		NextStatePriority: -1,
	}
}

func (s *StateConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain StateConfig
	p := plain(*NewStateConfig())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = StateConfig(p)
	for i, f := range s.Frames {
		if f == nil {
			s.Frames[i] = &FrameConfig{}
		}
	}
	return nil
}

func (s *StateConfig) String() string { return s.StateName }

func (s *StateConfig) FrameCount() int { return len(s.Frames) }

// SetFrameCount grows the timeline with empty frames or truncates it from the
// tail. n <= 0 clears it.
func (s *StateConfig) SetFrameCount(n int) {
	if n <= 0 {
		s.Frames = s.Frames[:0]
		return
	}
	if n <= len(s.Frames) {
		for i := n; i < len(s.Frames); i++ {
			s.Frames[i] = nil
		}
		s.Frames = s.Frames[:n]
		return
	}
	for i := len(s.Frames); i < n; i++ {
		s.Frames = append(s.Frames, &FrameConfig{})
	}
}

// AnimName returns the animation at index, or "" when out of range.
func (s *StateConfig) AnimName(index int) string {
	if index < 0 || index >= len(s.Animations) {
		return ""
	}
	return s.Animations[index]
}

func (s *StateConfig) DefaultAnimName() string {
	return s.AnimName(s.DefaultAnimIndex)
}

// AttackRange resolves the attack range in effect at frameIndex.
func (s *StateConfig) AttackRange(frameIndex int) (*RangeConfig, bool) {
	return ResolveRange(s.Frames, frameIndex, AttackRangeOf)
}

// BodyRange resolves the body range in effect at frameIndex.
func (s *StateConfig) BodyRange(frameIndex int) (*RangeConfig, bool) {
	return ResolveRange(s.Frames, frameIndex, BodyRangeOf)
}

func (s *StateConfig) Clone() *StateConfig {
	c := NewStateConfig()
	c.CopyFrom(s)
	return c
}

// CopyFrom deep-copies everything from other, frames and actions included.
func (s *StateConfig) CopyFrom(other *StateConfig) {
	if other == nil || other == s {
		return
	}
	s.CopySettingFrom(other)
	s.Frames = CloneFrames(other.Frames)
	s.ActionConfig.CopyFrom(&other.ActionConfig)
}

// CloneSetting copies only the settings into a fresh state with no frames
// and no actions.
func (s *StateConfig) CloneSetting() *StateConfig {
	c := NewStateConfig()
	c.CopySettingFrom(s)
	return c
}

// CopySettingFrom copies name, animations and transition settings. Frames
// and actions are left alone.
func (s *StateConfig) CopySettingFrom(other *StateConfig) {
	if other == nil || other == s {
		return
	}
	s.StateName = other.StateName
	s.DefaultAnimIndex = other.DefaultAnimIndex
	s.Animations = append([]string(nil), other.Animations...)
	s.Loop = other.Loop
	s.NextStateName = other.NextStateName
	s.NextStatePriority = other.NextStatePriority
	s.NextStateTransition = other.NextStateTransition
}
