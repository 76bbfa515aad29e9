// Package action provides the builtin action kinds. Importing it registers
// them with the skill package.
package action

import (
	"errors"

	"github.com/milk9111/actskill/skill"
)

const (
	KindEvent  = "event"
	KindAudio  = "audio"
	KindSpeed  = "speed"
	KindScript = "script"
)

var (
	ErrEmptyName = errors.New("action: empty name")
	ErrNoScript  = errors.New("action: no script or source")
)

func init() {
	skill.RegisterAction(KindEvent, func() skill.Action { return NewEventAction() })
	skill.RegisterAction(KindAudio, func() skill.Action { return NewAudioAction() })
	skill.RegisterAction(KindSpeed, func() skill.Action { return NewSpeedAction() })
	skill.RegisterAction(KindScript, func() skill.Action { return NewScriptAction() })
}

func emit(host skill.Host, typ string, payload map[string]any) {
	if host == nil {
		return
	}
	host.Emit(skill.Event{Type: typ, Payload: payload})
}
