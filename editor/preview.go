package editor

import (
	"time"

	"github.com/milk9111/actskill/common"
)

// Preview steps the session's frame cursor in real time, wrapping at the end
// of the selected state's timeline. Leftover time carries into the next Tick.
type Preview struct {
	s       *Session
	speed   float64
	rate    int
	playing bool
	pending time.Duration
}

// NewPreview plays at speed (clamped to 0..1) times the machine frame rate.
// rate > 0 overrides the machine's rate.
func (s *Session) NewPreview(speed float64, rate int) *Preview {
	return &Preview{s: s, speed: common.Clamp(speed, 0, 1), rate: rate}
}

func (p *Preview) Play() { p.playing = true }

func (p *Preview) Pause() {
	p.playing = false
	p.pending = 0
}

func (p *Preview) Playing() bool { return p.playing }

func (p *Preview) SetSpeed(speed float64) { p.speed = common.Clamp(speed, 0, 1) }

func (p *Preview) frameRate() int {
	if p.rate > 0 {
		return p.rate
	}
	if m := p.s.machine; m != nil {
		return m.FrameRate
	}
	return 0
}

// Tick advances by dt of wall time and returns how many frames were stepped.
func (p *Preview) Tick(dt time.Duration) int {
	st := p.s.state
	rate := p.frameRate()
	if !p.playing || st == nil || st.FrameCount() == 0 || rate <= 0 {
		return 0
	}
	p.pending += time.Duration(float64(dt) * p.speed)
	frameDur := time.Second / time.Duration(rate)
	frames := int(p.pending / frameDur)
	if frames == 0 {
		return 0
	}
	p.pending -= time.Duration(frames) * frameDur
	cur := max(p.s.frameIndex, -1)
	p.s.SelectFrame((cur + frames) % st.FrameCount())
	return frames
}
