// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without depending on a particular storage driver.
package repository

import "errors"

// ErrVillaNotFound is returned when a villa id or name is absent from the
// catalog, or refers to a withdrawn villa.
var ErrVillaNotFound = errors.New("villa not found")

// ErrReservationNotFound is returned when no reservation has the
// requested id.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// such as importing two villas with the same name.
var ErrConflict = errors.New("conflict")
