package protection

import "errors"

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrSubKindRange    = errors.New("sub-kind out of range")
)
