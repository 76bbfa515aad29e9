package skill

import "maps"

const testKind = "test"

// testAction is a minimal Action used across the package tests.
type testAction struct {
	ActionBase `yaml:",inline"`
	Tag        string            `yaml:"tag"`
	Params     map[string]string `yaml:"params,omitempty"`
}

func init() {
	RegisterAction(testKind, func() Action { return &testAction{ActionBase: NewActionBase()} })
}

func newTestAction(full bool, begin, end int) *testAction {
	return &testAction{ActionBase: ActionBase{Full: full, BeginFrame: begin, EndFrame: end, Loop: true}}
}

func (a *testAction) Kind() string                        { return testKind }
func (a *testAction) Base() *ActionBase                   { return &a.ActionBase }
func (a *testAction) CreateHandler(Host) (Handler, error) { return a.Tag, nil }
func (a *testAction) ReleaseHandler(Host, Handler)        {}
func (a *testAction) Clone() Action {
	c := *a
	c.Params = maps.Clone(a.Params)
	return &c
}
func (a *testAction) CopyFrom(other Action) bool {
	if other == nil {
		return false
	}
	a.CopyBase(other.Base())
	o, ok := other.(*testAction)
	if !ok {
		return false
	}
	a.Tag = o.Tag
	a.Params = maps.Clone(o.Params)
	return true
}

func box(x float64) Range {
	return &BoxRange{Center: Vec3{X: x}, Dimensions: Vec3{X: 1, Y: 1, Z: 1}}
}

func modifying(rs ...Range) RangeConfig {
	return RangeConfig{ModifyRange: true, Ranges: rs}
}
