package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// OrderBuilder turns validated requests into persisted reservations.
// It performs the single authoritative price read, snapshots unit
// prices into line items and writes header plus items atomically.  The
// catalog is consulted before any exclusivity is acquired so admission
// decisions never block on catalog I/O.
type OrderBuilder struct {
	catalog PriceCatalog
	store   ReservationStore
	guard   *CapacityGuard
	issuer  TicketIssuer
}

// NewOrderBuilder wires the builder.  catalog and store must be
// non-nil; guard may be nil only when the booking path is not used.
func NewOrderBuilder(catalog PriceCatalog, store ReservationStore, guard *CapacityGuard) *OrderBuilder {
	if catalog == nil || store == nil {
		panic("nil collaborator passed to NewOrderBuilder")
	}
	return &OrderBuilder{catalog: catalog, store: store, guard: guard}
}

// BookingRequest carries the table-booking parameters.  The slot is
// admission-controlled; line items are optional (a table can be booked
// without pre-ordering food).
type BookingRequest struct {
	ClientID  uint64
	Slot      model.Slot
	PartySize uint32
	Message   *string
	Items     []OrderLine
}

// BuildOrder creates a food-order reservation from cart lines.  It
// fails with ErrEmptyOrder when items is empty, ErrInvalidQuantity on
// any non-positive quantity and ErrUnknownItem when the catalog has no
// such item.  On success the reservation is PENDING and carries a
// fresh ticket token.
func (b *OrderBuilder) BuildOrder(ctx context.Context, clientID uint64, items []OrderLine, message *string) (*model.Reservation, []model.LineItem, error) {
	lines, err := b.snapshotPrices(ctx, items)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	res := &model.Reservation{
		ClientID:  clientID,
		Kind:      model.KindOrder,
		PartySize: 1,
		Status:    model.StatusPending,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.persist(ctx, res, lines); err != nil {
		return nil, nil, err
	}
	return res, lines, nil
}

// BuildBooking creates a table booking.  The capacity guard is
// consulted first; when the slot is full the request fails with
// ErrSlotFull and nothing is written.  Any failure after admission
// releases the claimed capacity unit so no partial state survives.
func (b *OrderBuilder) BuildBooking(ctx context.Context, req BookingRequest) (*model.Reservation, []model.LineItem, error) {
	if b.guard == nil {
		return nil, nil, fmt.Errorf("booking path requires a capacity guard")
	}
	if req.PartySize == 0 {
		return nil, nil, ErrInvalidQuantity
	}
	// Prices resolve before the capacity unit is claimed.
	lines, err := b.snapshotPrices(ctx, req.Items)
	if err != nil {
		return nil, nil, err
	}
	if err := b.guard.TryReserve(ctx, req.Slot); err != nil {
		return nil, nil, err
	}
	res := &model.Reservation{
		ClientID:  req.ClientID,
		Kind:      model.KindBooking,
		Slot:      req.Slot,
		PartySize: req.PartySize,
		Status:    model.StatusPending,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := b.persist(ctx, res, lines); err != nil {
		if relErr := b.guard.Release(ctx, req.Slot); relErr != nil {
			return nil, nil, fmt.Errorf("persist booking: %w (capacity release also failed: %v)", err, relErr)
		}
		return nil, nil, err
	}
	return res, lines, nil
}

// snapshotPrices validates quantities and resolves every item against
// the catalog, freezing unit prices into line items.  Later catalog
// price changes never alter the returned snapshots.
func (b *OrderBuilder) snapshotPrices(ctx context.Context, items []OrderLine) ([]model.LineItem, error) {
	lines := make([]model.LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity == 0 {
			return nil, ErrInvalidQuantity
		}
		price, name, err := b.catalog.PriceOf(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, model.LineItem{
			ItemID:         it.ItemID,
			ItemName:       name,
			Quantity:       it.Quantity,
			UnitPriceCents: price,
		})
	}
	return lines, nil
}

// persist mints a ticket token and writes the reservation atomically.
// A token collision is answered by minting a fresh token; a transient
// conflict is retried with the same token.  Both are bounded.
func (b *OrderBuilder) persist(ctx context.Context, res *model.Reservation, lines []model.LineItem) error {
	res.TotalCents = model.TotalCents(lines)
	var err error
	for attempt := 0; attempt < tokenRetries; attempt++ {
		if res.TicketToken == "" {
			res.TicketToken, err = b.issuer.NewToken()
			if err != nil {
				return fmt.Errorf("mint ticket token: %w", err)
			}
		}
		err = b.store.CreateWithItems(ctx, res, lines)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrTokenCollision):
			res.TicketToken = "" // forces a fresh token next attempt
		case errors.Is(err, ErrPersistenceConflict):
			// same token, retry the write
		default:
			return err
		}
	}
	return err
}
