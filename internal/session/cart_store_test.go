package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/model"
	"github.com/restaurant-eugene/booking-api/internal/session"
)

func TestMemoryFallbackRoundTrip(t *testing.T) {
	store := session.NewCartStore(nil) // no Redis: in-process fallback
	ctx := context.Background()

	cart, err := store.Load(ctx, "client:1")
	require.NoError(t, err)
	assert.Empty(t, cart.Lines, "unknown key loads an empty cart")

	cart.Lines = append(cart.Lines, model.CartLine{ItemID: 1, Name: "Soup", UnitPriceCents: 500, Quantity: 2})
	require.NoError(t, store.Save(ctx, "client:1", cart))

	got, err := store.Load(ctx, "client:1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, uint32(1000), got.SubtotalCents())

	// Keys are isolated.
	other, err := store.Load(ctx, "client:2")
	require.NoError(t, err)
	assert.Empty(t, other.Lines)

	require.NoError(t, store.Clear(ctx, "client:1"))
	got, err = store.Load(ctx, "client:1")
	require.NoError(t, err)
	assert.Empty(t, got.Lines)
}
