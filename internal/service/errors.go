package service

import (
    "errors"
    "fmt"
)

var (
    ErrVillaNotFound       = errors.New("villa not found")
    ErrReservationNotFound = errors.New("reservation not found")
)

// ValidationError rejects a booking request field.  It is reported to
// the caller as is and never retried.
type ValidationError struct {
    Field  string
    Reason string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// PersistenceError marks a storage failure.  The operation that raised it
// did not take effect.
type PersistenceError struct {
    Op  string
    Err error
}

func (e *PersistenceError) Error() string {
    return fmt.Sprintf("%s: persistence failure: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
