package booking

import (
	"context"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// ReservationStore persists reservations and exposes the conditional
// updates the state machine relies on.  Implementations must make
// CreateWithItems atomic (header and items visible together or not at
// all) and must map their duplicate-token and transient-conflict
// conditions onto ErrTokenCollision and ErrPersistenceConflict.
type ReservationStore interface {
	// CreateWithItems writes the reservation header and all line items
	// as one atomic unit and fills in generated identifiers.
	CreateWithItems(ctx context.Context, res *model.Reservation, items []model.LineItem) error

	// FindByToken loads a reservation and its line items by ticket
	// token, returning ErrTokenNotFound when no reservation matches.
	FindByToken(ctx context.Context, token string) (*model.Reservation, []model.LineItem, error)

	// MarkServed transitions the reservation to SERVED only if its
	// current status is PENDING, as a single conditional update.  It
	// returns true when this call performed the transition.
	MarkServed(ctx context.Context, token string) (bool, error)

	// MarkCancelled transitions the reservation to CANCELLED only if its
	// current status is PENDING, with the same conditional-update
	// discipline as MarkServed.
	MarkCancelled(ctx context.Context, token string) (bool, error)
}
