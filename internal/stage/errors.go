package stage

import "errors"

var (
	ErrSessionCreate     = errors.New("unable create stage session")
	ErrJoinFailed        = errors.New("unable request stage join or leave")
	ErrCoordinatorClosed = errors.New("stage coordinator closed")
)
