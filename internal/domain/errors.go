package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoInventory       = errors.New("insufficient inventory")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)

// InvalidInputError reports a malformed or out-of-range argument to a value
// object or classification call. Business outcomes (no rate, sold out,
// min-stay) are never errors; they travel as result data.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}
