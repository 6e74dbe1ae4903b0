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

func newServedFixture(t *testing.T) (*booking.ServingStateMachine, string, *memStore) {
	t.Helper()
	catalog := newFakeCatalog()
	catalog.add(1, "Soup", 500)
	store := newMemStore()
	builder := newTestBuilder(catalog, store, newMemCounter(), 10)

	res, _, err := builder.BuildOrder(context.Background(), 42, []booking.OrderLine{{ItemID: 1, Quantity: 2}}, nil)
	require.NoError(t, err)
	return booking.NewServingStateMachine(store, nil), res.TicketToken, store
}

func TestServeExactlyOnceUnderConcurrency(t *testing.T) {
	const scanners = 16
	machine, token, _ := newServedFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, scanners)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = machine.Serve(context.Background(), token)
		}(i)
	}
	wg.Wait()

	succeeded, alreadyServed := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, booking.ErrAlreadyServed):
			alreadyServed++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one scanner wins")
	assert.Equal(t, scanners-1, alreadyServed)
}

func TestServeRecordsServedAt(t *testing.T) {
	machine, token, _ := newServedFixture(t)

	snap, err := machine.Serve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.StatusServed, snap.Reservation.Status)
	require.NotNil(t, snap.Reservation.ServedAt)
}

func TestServeReplayReportsAlreadyServed(t *testing.T) {
	machine, token, _ := newServedFixture(t)
	ctx := context.Background()

	_, err := machine.Serve(ctx, token)
	require.NoError(t, err)

	_, err = machine.Serve(ctx, token)
	assert.ErrorIs(t, err, booking.ErrAlreadyServed)
}

func TestServeUnknownToken(t *testing.T) {
	machine := booking.NewServingStateMachine(newMemStore(), nil)

	_, err := machine.Serve(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, booking.ErrTokenNotFound)
}

func TestServeCancelledTicket(t *testing.T) {
	machine, token, _ := newServedFixture(t)
	ctx := context.Background()

	require.NoError(t, machine.Cancel(ctx, token))

	_, err := machine.Serve(ctx, token)
	assert.ErrorIs(t, err, booking.ErrCancelled)
}

func TestCancelServedTicket(t *testing.T) {
	machine, token, _ := newServedFixture(t)
	ctx := context.Background()

	_, err := machine.Serve(ctx, token)
	require.NoError(t, err)

	assert.ErrorIs(t, machine.Cancel(ctx, token), booking.ErrAlreadyServed)
}

func TestVerifyIsIdempotentAndReadOnly(t *testing.T) {
	machine, token, _ := newServedFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, err := machine.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, snap.Reservation.Status, "verify must not consume the ticket")
	}

	_, err := machine.Serve(ctx, token)
	require.NoError(t, err)

	// Verification still works after redemption and shows the state.
	snap, err := machine.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.StatusServed, snap.Reservation.Status)
}

func TestVerifyRecomputesTotalFromSnapshots(t *testing.T) {
	machine, token, store := newServedFixture(t)

	// Corrupt the stored header; the reported total must still come
	// from the immutable line items (2 x 500).
	store.corruptHeaderTotal(token, 1)

	snap, err := machine.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), snap.TotalCents)
}
