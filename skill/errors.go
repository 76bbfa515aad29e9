package skill

import "errors"

var (
	ErrUnknownActionKind = errors.New("skill: unknown action kind")
	ErrUnknownRangeKind  = errors.New("skill: unknown range kind")
	ErrMissingKind       = errors.New("skill: missing kind")
)
