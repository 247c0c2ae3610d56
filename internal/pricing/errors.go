package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange = errors.New("checkout must be after checkin")
	ErrCapacityExceeded = errors.New("guest count exceeds villa capacity")
	ErrInvalidGuests    = errors.New("guest count must be at least 1")
)

// CapacityError carries the figures behind ErrCapacityExceeded.
type CapacityError struct {
	Guests   int
	Capacity int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("%d guests requested, villa accepts at most %d", e.Guests, e.Capacity)
}

func (e CapacityError) Unwrap() error { return ErrCapacityExceeded }
