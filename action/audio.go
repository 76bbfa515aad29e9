package action

import "github.com/milk9111/actskill/skill"

// AudioAction plays a sound cue on activation and optionally stops it when
// the window closes.
type AudioAction struct {
	skill.ActionBase `yaml:",inline"`
	Cue              string  `yaml:"cue"`
	Volume           float64 `yaml:"volume"`
	StopOnRelease    bool    `yaml:"stop_on_release"`
}

func NewAudioAction() *AudioAction {
	return &AudioAction{ActionBase: skill.NewActionBase(), Volume: 1}
}

type audioHandler struct {
	cue  string
	stop bool
}

func (a *AudioAction) Kind() string            { return KindAudio }
func (a *AudioAction) Base() *skill.ActionBase { return &a.ActionBase }

func (a *AudioAction) CreateHandler(host skill.Host) (skill.Handler, error) {
	if a.Cue == "" {
		return nil, ErrEmptyName
	}
	emit(host, "audio_play", map[string]any{"cue": a.Cue, "volume": a.Volume})
	return &audioHandler{cue: a.Cue, stop: a.StopOnRelease}, nil
}

func (a *AudioAction) ReleaseHandler(host skill.Host, handler skill.Handler) {
	h, ok := handler.(*audioHandler)
	if !ok || h == nil || !h.stop {
		return
	}
	emit(host, "audio_stop", map[string]any{"cue": h.cue})
}

func (a *AudioAction) Clone() skill.Action {
	c := *a
	return &c
}

func (a *AudioAction) CopyFrom(other skill.Action) bool {
	if other == nil {
		return false
	}
	a.CopyBase(other.Base())
	o, ok := other.(*AudioAction)
	if !ok {
		return false
	}
	a.Cue = o.Cue
	a.Volume = o.Volume
	a.StopOnRelease = o.StopOnRelease
	return true
}
