package booking

import (
	"context"
	"errors"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// conflictRetries bounds how often a transient persistence conflict is
// retried before it surfaces to the caller.
const conflictRetries = 3

// SlotCounter is the single point of mutable truth for per-slot
// reservation counts.  Increment must be an atomic conditional
// check-and-increment: it succeeds only while the non-cancelled
// reservation count for the slot is below max, and under concurrent
// calls the sum of admissions never overshoots, not even transiently.
// A read-then-write implementation is not acceptable.
type SlotCounter interface {
	// Increment admits one reservation into the slot.  It returns false
	// when the slot already holds max reservations.  Transient conflicts
	// are reported as ErrPersistenceConflict.
	Increment(ctx context.Context, slot model.Slot, max int) (admitted bool, err error)

	// Decrement releases one unit of capacity, flooring at zero.
	Decrement(ctx context.Context, slot model.Slot) error
}

// CapacityGuard admits or rejects table bookings against a fixed
// per-slot capacity measured in reservation count, not party size.
// Only the guard mutates the slot counter.
type CapacityGuard struct {
	counter SlotCounter
	max     int
}

// NewCapacityGuard builds a guard over the given counter.  maxCapacity
// is a policy value supplied by configuration (10 in the reference
// deployment); values below 1 disable admission entirely.
func NewCapacityGuard(counter SlotCounter, maxCapacity int) *CapacityGuard {
	if counter == nil {
		panic("nil slot counter passed to NewCapacityGuard")
	}
	return &CapacityGuard{counter: counter, max: maxCapacity}
}

// TryReserve claims one unit of capacity for the slot.  It returns nil
// on admission and ErrSlotFull when the slot is at capacity.  Transient
// conflicts from the counter are retried a bounded number of times and
// then surfaced as ErrPersistenceConflict.
func (g *CapacityGuard) TryReserve(ctx context.Context, slot model.Slot) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		var admitted bool
		admitted, err = g.counter.Increment(ctx, slot, g.max)
		if err == nil {
			if !admitted {
				return ErrSlotFull
			}
			return nil
		}
		if !errors.Is(err, ErrPersistenceConflict) {
			return err
		}
	}
	return err
}

// Release returns one unit of capacity to the slot.  Called when a
// booking is cancelled or when persistence fails after admission.
func (g *CapacityGuard) Release(ctx context.Context, slot model.Slot) error {
	var err error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		err = g.counter.Decrement(ctx, slot)
		if err == nil || !errors.Is(err, ErrPersistenceConflict) {
			return err
		}
	}
	return err
}
