package booking

import (
	"context"
	"errors"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// Snapshot is the read-only view returned to scanning devices.  The
// total is recomputed from the immutable line-item snapshots rather
// than echoing the stored header value.
type Snapshot struct {
	Reservation *model.Reservation
	Items       []model.LineItem
	TotalCents  uint32
}

// ServingStateMachine owns reservation status.  Verify is side-effect
// free; Serve and Cancel combine the status check and the status write
// into one conditional update so the Pending→Served (or →Cancelled)
// transition happens at most once per token no matter how many devices
// race on it.
type ServingStateMachine struct {
	store ReservationStore
	guard *CapacityGuard
}

// NewServingStateMachine wires the state machine.  guard may be nil
// when cancellation never needs to release slot capacity.
func NewServingStateMachine(store ReservationStore, guard *CapacityGuard) *ServingStateMachine {
	if store == nil {
		panic("nil store passed to NewServingStateMachine")
	}
	return &ServingStateMachine{store: store, guard: guard}
}

// Verify resolves a scanned token into a reservation snapshot without
// touching state.  Safe to call any number of times; used for the
// confirmation screen before serving.
func (m *ServingStateMachine) Verify(ctx context.Context, token string) (*Snapshot, error) {
	res, items, err := m.store.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Reservation: res, Items: items, TotalCents: model.TotalCents(items)}, nil
}

// Serve redeems a ticket exactly once.  Exactly one of N concurrent
// calls for the same token succeeds; the others observe
// ErrAlreadyServed.  A token for a cancelled reservation yields
// ErrCancelled, an unknown token ErrTokenNotFound.
func (m *ServingStateMachine) Serve(ctx context.Context, token string) (*Snapshot, error) {
	transitioned, err := m.transition(ctx, token, m.store.MarkServed)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, m.rejectReason(ctx, token)
	}
	return m.Verify(ctx, token)
}

// Cancel transitions a pending reservation to CANCELLED and, for table
// bookings, releases its slot capacity unit.  Terminal states reject:
// a served ticket yields ErrAlreadyServed, a cancelled one
// ErrCancelled.
func (m *ServingStateMachine) Cancel(ctx context.Context, token string) error {
	transitioned, err := m.transition(ctx, token, m.store.MarkCancelled)
	if err != nil {
		return err
	}
	if !transitioned {
		return m.rejectReason(ctx, token)
	}
	res, _, err := m.store.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if res.Kind == model.KindBooking && m.guard != nil {
		return m.guard.Release(ctx, res.Slot)
	}
	return nil
}

// transition runs one conditional update with bounded retries on
// transient conflicts.  It never masks a conflict as success.
func (m *ServingStateMachine) transition(ctx context.Context, token string, update func(context.Context, string) (bool, error)) (bool, error) {
	var (
		ok  bool
		err error
	)
	for attempt := 0; attempt < conflictRetries; attempt++ {
		ok, err = update(ctx, token)
		if err == nil {
			return ok, nil
		}
		if !errors.Is(err, ErrPersistenceConflict) {
			return false, err
		}
	}
	return false, err
}

// rejectReason re-reads the reservation after a failed conditional
// update to report the precise business reason: missing token, already
// served, or cancelled.
func (m *ServingStateMachine) rejectReason(ctx context.Context, token string) error {
	res, _, err := m.store.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	switch res.Status {
	case model.StatusServed:
		return ErrAlreadyServed
	case model.StatusCancelled:
		return ErrCancelled
	default:
		// Pending again would mean the conditional update lost a race it
		// should have won; report a conflict rather than guessing.
		return ErrPersistenceConflict
	}
}
