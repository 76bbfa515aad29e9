package skill

import (
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultFrameRate = 60

// MachineConfig is one skill asset: the root of every state, frame and action.
type MachineConfig struct {
	DefaultStateName       string           `yaml:"default_state_name"`
	DefaultStateTransition TransitionConfig `yaml:"default_state_transition"`
	FrameRate              int              `yaml:"frame_rate"`
	States                 []*StateConfig   `yaml:"states"`
}

func NewMachineConfig() *MachineConfig {
	return &MachineConfig{FrameRate: DefaultFrameRate}
}

func (m *MachineConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain MachineConfig
	p := plain(*NewMachineConfig())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*m = MachineConfig(p)
	states := m.States[:0]
	for _, s := range m.States {
		if s != nil {
			states = append(states, s)
		}
	}
	m.States = states
	return nil
}

// FindState returns the first state named name and its index, or nil and -1.
func (m *MachineConfig) FindState(name string) (*StateConfig, int) {
	if name == "" {
		return nil, -1
	}
	for i, s := range m.States {
		if s != nil && s.StateName == name {
			return s, i
		}
	}
	return nil, -1
}

// DuplicateStateNames returns every state name used more than once, in
// order of first appearance.
func (m *MachineConfig) DuplicateStateNames() []string {
	seen := make(map[string]int, len(m.States))
	var dups []string
	for _, s := range m.States {
		if s == nil {
			continue
		}
		seen[s.StateName]++
		if seen[s.StateName] == 2 {
			dups = append(dups, s.StateName)
		}
	}
	return dups
}

// FrameDuration is the wall-clock length of one frame, or 0 when FrameRate is
// not positive.
func (m *MachineConfig) FrameDuration() time.Duration {
	if m.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(m.FrameRate)
}

func (m *MachineConfig) Clone() *MachineConfig {
	c := NewMachineConfig()
	c.CopyFrom(m)
	return c
}

func (m *MachineConfig) CopyFrom(other *MachineConfig) {
	if other == nil || other == m {
		return
	}
	m.DefaultStateName = other.DefaultStateName
	m.DefaultStateTransition = other.DefaultStateTransition
	m.FrameRate = other.FrameRate
	var states []*StateConfig
	for _, s := range other.States {
		if s != nil {
			states = append(states, s.Clone())
		}
	}
	m.States = states
}
