package service

import (
	"errors"
	"fmt"
)

// Validation failures raised by AddTransaction.
var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidAmount = errors.New("transaction amount must be a non-negative number")
)

// ValidationError names the field that failed validation. It unwraps to one of
// the sentinel errors above.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
