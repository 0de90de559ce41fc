package protocol

import (
	"errors"
	"fmt"
)

var ErrUnhandledCase = errors.New("unhandled enum case")

// Unhandled reports an enum value of the engine that no switch knows about.
// Callers panic with it: a new engine case must never be silently mapped.
func Unhandled[T ~int](v T) error {
	return fmt.Errorf("%w: %T(%d)", ErrUnhandledCase, v, int(v))
}
