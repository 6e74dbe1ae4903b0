package booking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

func newTestBuilder(catalog *fakeCatalog, store *memStore, counter *memCounter, cap int) *booking.OrderBuilder {
	guard := booking.NewCapacityGuard(counter, cap)
	return booking.NewOrderBuilder(catalog, store, guard)
}

func TestBuildOrderFreezesPrices(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	store := newMemStore()
	builder := newTestBuilder(catalog, store, newMemCounter(), 10)
	machine := booking.NewServingStateMachine(store, nil)

	res, items, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 2}}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(1000), res.TotalCents)
	assert.Equal(t, uint32(500), items[0].UnitPriceCents)
	assert.Equal(t, "Soup", items[0].ItemName)

	// A later menu edit must not move the stored snapshot.
	catalog.setPrice(1, 800)

	snap, err := machine.Verify(context.Background(), res.TicketToken)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), snap.TotalCents)
	assert.Equal(t, uint32(500), snap.Items[0].UnitPriceCents)
}

func TestBuildOrderValidation(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	builder := newTestBuilder(catalog, newMemStore(), newMemCounter(), 10)
	ctx := context.Background()

	_, _, err := builder.BuildOrder(ctx, 42, nil, nil)
	assert.ErrorIs(t, err, booking.ErrEmptyOrder)

	_, _, err = builder.BuildOrder(ctx, 42, []booking.OrderLine{{ItemID: 99, Quantity: 1}}, nil)
	assert.ErrorIs(t, err, booking.ErrUnknownItem)

	_, _, err = builder.BuildOrder(ctx, 42, []booking.OrderLine{{ItemID: 1, Quantity: 0}}, nil)
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)
}

func TestBuildOrderStatusAndToken(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	builder := newTestBuilder(catalog, newMemStore(), newMemCounter(), 10)

	res, _, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, res.Status)
	assert.Equal(t, model.KindOrder, res.Kind)
	assert.Len(t, res.TicketToken, 64, "32 random bytes hex-encoded")
}

func TestBuildOrderTokenUniqueness(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	store := newMemStore()
	builder := newTestBuilder(catalog, store, newMemCounter(), 10)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		res, _, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 1}}, nil)
		require.NoError(t, err)
		assert.False(t, seen[res.TicketToken], "token %q minted twice", res.TicketToken)
		seen[res.TicketToken] = true
	}
}

func TestBuildOrderRemintsTokenOnCollision(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	store := newMemStore()
	store.collideNext = 2
	builder := newTestBuilder(catalog, store, newMemCounter(), 10)

	res, _, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 1}}, nil)
	require.NoError(t, err, "collisions are retried transparently")
	assert.Len(t, res.TicketToken, 64)
}

func TestBuildOrderSurfacesExhaustedConflicts(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	store := newMemStore()
	store.conflictNext = 100 // more than any bounded retry budget
	builder := newTestBuilder(catalog, store, newMemCounter(), 10)

	_, _, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 1}}, nil)
	assert.ErrorIs(t, err, booking.ErrPersistenceConflict)
}

func TestBuildBookingWithoutItems(t *testing.T) {
	builder := newTestBuilder(newFakeCatalog(), newMemStore(), newMemCounter(), 10)

	res, items, err := builder.BuildBooking(context.Background(), booking.BookingRequest{
		ClientID:  7,
		Slot:      model.Slot{Date: "2026-09-12", Time: "19:30"},
		PartySize: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, model.KindBooking, res.Kind)
	assert.Equal(t, uint32(0), res.TotalCents)
	assert.Empty(t, items)
}

func TestBuildBookingRejectsZeroPartySize(t *testing.T) {
	builder := newTestBuilder(newFakeCatalog(), newMemStore(), newMemCounter(), 10)

	_, _, err := builder.BuildBooking(context.Background(), booking.BookingRequest{
		ClientID: 7,
		Slot:     model.Slot{Date: "2026-09-12", Time: "19:30"},
	})
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)
}

func TestBuildBookingReleasesCapacityOnPersistFailure(t *testing.T) {
	store := newMemStore()
	store.failWith = errors.New("write failed")
	counter := newMemCounter()
	builder := newTestBuilder(newFakeCatalog(), store, counter, 10)
	slot := model.Slot{Date: "2026-09-12", Time: "19:30"}

	_, _, err := builder.BuildBooking(context.Background(), booking.BookingRequest{
		ClientID:  7,
		Slot:      slot,
		PartySize: 2,
	})
	require.Error(t, err)
	assert.Equal(t, 0, counter.reserved(slot), "failed persist must hand the capacity unit back")
}
