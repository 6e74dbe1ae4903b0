package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

func TestConcurrentBookingsNeverOvershootCapacity(t *testing.T) {
	const capacity = 10
	const attempts = 12

	store := newMemStore()
	counter := newMemCounter()
	builder := newTestBuilder(newFakeCatalog(), store, counter, capacity)
	slot := model.Slot{Date: "2026-09-12", Time: "19:30"}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = builder.BuildBooking(context.Background(), booking.BookingRequest{
				ClientID:  uint64(i + 1),
				Slot:      slot,
				PartySize: 2,
			})
		}(i)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case assert.ErrorIs(t, err, booking.ErrSlotFull):
			rejected++
		}
	}
	assert.Equal(t, capacity, admitted)
	assert.Equal(t, attempts-capacity, rejected)
	assert.Equal(t, capacity, counter.reserved(slot))
}

func TestCancellationFreesCapacityForNewBooking(t *testing.T) {
	const capacity = 2

	store := newMemStore()
	counter := newMemCounter()
	guard := booking.NewCapacityGuard(counter, capacity)
	builder := booking.NewOrderBuilder(newFakeCatalog(), store, guard)
	machine := booking.NewServingStateMachine(store, guard)
	slot := model.Slot{Date: "2026-09-12", Time: "19:30"}
	ctx := context.Background()

	req := func(client uint64) booking.BookingRequest {
		return booking.BookingRequest{ClientID: client, Slot: slot, PartySize: 2}
	}

	first, _, err := builder.BuildBooking(ctx, req(1))
	require.NoError(t, err)
	_, _, err = builder.BuildBooking(ctx, req(2))
	require.NoError(t, err)

	_, _, err = builder.BuildBooking(ctx, req(3))
	assert.ErrorIs(t, err, booking.ErrSlotFull)

	require.NoError(t, machine.Cancel(ctx, first.TicketToken))
	assert.Equal(t, 1, counter.reserved(slot))

	_, _, err = builder.BuildBooking(ctx, req(3))
	assert.NoError(t, err, "cancellation must free a capacity unit")
}

func TestDistinctSlotsHaveIndependentCapacity(t *testing.T) {
	const capacity = 1

	builder := newTestBuilder(newFakeCatalog(), newMemStore(), newMemCounter(), capacity)
	ctx := context.Background()

	_, _, err := builder.BuildBooking(ctx, booking.BookingRequest{
		ClientID: 1, Slot: model.Slot{Date: "2026-09-12", Time: "19:30"}, PartySize: 2,
	})
	require.NoError(t, err)

	// Same date, different time: its own counter.
	_, _, err = builder.BuildBooking(ctx, booking.BookingRequest{
		ClientID: 2, Slot: model.Slot{Date: "2026-09-12", Time: "21:00"}, PartySize: 2,
	})
	assert.NoError(t, err)

	_, _, err = builder.BuildBooking(ctx, booking.BookingRequest{
		ClientID: 3, Slot: model.Slot{Date: "2026-09-12", Time: "19:30"}, PartySize: 2,
	})
	assert.ErrorIs(t, err, booking.ErrSlotFull)
}

func TestOrdersDoNotConsumeSlotCapacity(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	counter := newMemCounter()
	builder := newTestBuilder(catalog, newMemStore(), counter, 1)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := builder.BuildOrder(ctx, uint64(i+1), []booking.OrderLine{{ItemID: 1, Quantity: 1}}, nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, counter.reserved(model.Slot{}), "food orders are not admission-controlled")
}
