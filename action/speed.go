package action

import (
	"sync/atomic"

	"github.com/milk9111/actskill/skill"
)

var speedTokens atomic.Uint64

// SpeedAction pushes a playback speed multiplier while active. Push and pop
// carry the same token so overlapping windows can be unwound in any order.
type SpeedAction struct {
	skill.ActionBase `yaml:",inline"`
	Scale            float64 `yaml:"scale"`
}

func NewSpeedAction() *SpeedAction {
	return &SpeedAction{ActionBase: skill.NewActionBase(), Scale: 1}
}

type speedHandler struct {
	token uint64
}

func (a *SpeedAction) Kind() string            { return KindSpeed }
func (a *SpeedAction) Base() *skill.ActionBase { return &a.ActionBase }

func (a *SpeedAction) CreateHandler(host skill.Host) (skill.Handler, error) {
	h := &speedHandler{token: speedTokens.Add(1)}
	emit(host, "speed_push", map[string]any{"token": h.token, "scale": a.Scale})
	return h, nil
}

func (a *SpeedAction) ReleaseHandler(host skill.Host, handler skill.Handler) {
	h, ok := handler.(*speedHandler)
	if !ok || h == nil {
		return
	}
	emit(host, "speed_pop", map[string]any{"token": h.token})
}

func (a *SpeedAction) Clone() skill.Action {
	c := *a
	return &c
}

func (a *SpeedAction) CopyFrom(other skill.Action) bool {
	if other == nil {
		return false
	}
	a.CopyBase(other.Base())
	o, ok := other.(*SpeedAction)
	if !ok {
		return false
	}
	a.Scale = o.Scale
	return true
}
