package identity

import "errors"

var (
	ErrTokenEmpty     = errors.New("participant token is empty")
	ErrTokenInvalid   = errors.New("participant token is invalid")
	ErrTokenExpired   = errors.New("participant token expired")
	ErrMissingClaim   = errors.New("participant token claim is missing")
	ErrInvalidSignKey = errors.New("invalid token sign key")
)
