package presenter

import "errors"

var (
	ErrStageClosed  = errors.New("stage closed")
	ErrEventsClosed = errors.New("events connection closed by client")
)
