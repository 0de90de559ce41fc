package binding

import "errors"

var (
	ErrFramerateOutOfRange = errors.New("target framerate out of range")
	ErrBitrateOutOfRange   = errors.New("max bitrate out of range")
	ErrSizeOutOfRange      = errors.New("frame size out of range")
	ErrNoStreamFactory     = errors.New("stream factory is not configured")
)
