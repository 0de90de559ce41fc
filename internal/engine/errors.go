package engine

import "errors"

var (
	ErrInvalidToken         = errors.New("invalid participant token")
	ErrNoStrategy           = errors.New("session requires a strategy")
	ErrTokenExpired         = errors.New("participant token expired")
	ErrAlreadyJoined        = errors.New("session already joined")
	ErrLeaveRequested       = errors.New("leave requested")
	ErrDial                 = errors.New("unable dial stage endpoint")
	ErrInvalidEndpoint      = errors.New("invalid stage endpoint")
	ErrPeerConnectionClosed = errors.New("peerConnection is closed")
	ErrServerError          = errors.New("stage server reported an error")
)
