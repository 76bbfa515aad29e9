package skill

import (
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransitionConfig carries the blend the animation layer applies when the
// machine enters a state. Easing names follow gween's ease package.
type TransitionConfig struct {
	Duration float64 `yaml:"duration"`
	Offset   float64 `yaml:"offset"`
	Easing   string  `yaml:"easing,omitempty"`
}

var easings = map[string]ease.TweenFunc{
	"linear":        ease.Linear,
	"in_quad":       ease.InQuad,
	"out_quad":      ease.OutQuad,
	"in_out_quad":   ease.InOutQuad,
	"in_cubic":      ease.InCubic,
	"out_cubic":     ease.OutCubic,
	"in_out_cubic":  ease.InOutCubic,
	"in_sine":       ease.InSine,
	"out_sine":      ease.OutSine,
	"in_out_sine":   ease.InOutSine,
	"in_expo":       ease.InExpo,
	"out_expo":      ease.OutExpo,
	"in_out_expo":   ease.InOutExpo,
	"in_back":       ease.InBack,
	"out_back":      ease.OutBack,
	"in_out_back":   ease.InOutBack,
	"in_bounce":     ease.InBounce,
	"out_bounce":    ease.OutBounce,
	"in_out_bounce": ease.InOutBounce,
}

// Easings lists the accepted easing names.
func Easings() []string {
	names := make([]string, 0, len(easings))
	for k := range easings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// EaseFunc resolves Easing. An empty name is linear; an unknown name reports
// false and also falls back to linear.
func (t TransitionConfig) EaseFunc() (ease.TweenFunc, bool) {
	if t.Easing == "" {
		return ease.Linear, true
	}
	fn, ok := easings[t.Easing]
	if !ok {
		return ease.Linear, false
	}
	return fn, true
}

// NewTween returns a 0→1 blend-weight tween, or nil for an instant cut.
func (t TransitionConfig) NewTween() *gween.Tween {
	if t.Duration <= 0 {
		return nil
	}
	fn, _ := t.EaseFunc()
	return gween.New(0, 1, float32(t.Duration), fn)
}
