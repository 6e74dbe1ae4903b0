package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	cart := model.Cart{}

	cart, err := booking.AddToCart(cart, 1, "Soup", 500, 2)
	require.NoError(t, err)
	cart, err = booking.AddToCart(cart, 1, "Soup", 500, 3)
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint32(5), cart.Lines[0].Quantity)
	assert.Equal(t, uint32(2500), cart.SubtotalCents())
}

func TestAddToCartOrderIndependent(t *testing.T) {
	// Same additions in two different interleavings must end at the
	// same per-item quantities.
	type add struct {
		id  uint64
		qty uint32
	}
	adds := []add{{1, 2}, {2, 1}, {1, 3}, {2, 4}}
	reversed := []add{{2, 4}, {1, 3}, {2, 1}, {1, 2}}

	build := func(seq []add) map[uint64]uint32 {
		cart := model.Cart{}
		var err error
		for _, a := range seq {
			cart, err = booking.AddToCart(cart, a.id, "dish", 100, a.qty)
			require.NoError(t, err)
		}
		got := make(map[uint64]uint32)
		for _, l := range cart.Lines {
			got[l.ItemID] = l.Quantity
		}
		return got
	}

	assert.Equal(t, build(adds), build(reversed))
}

func TestAddToCartRejectsZeroQuantity(t *testing.T) {
	cart, err := booking.AddToCart(model.Cart{}, 1, "Soup", 500, 1)
	require.NoError(t, err)

	got, err := booking.AddToCart(cart, 1, "Soup", 500, 0)
	assert.ErrorIs(t, err, booking.ErrInvalidQuantity)
	assert.Equal(t, cart, got, "failed addition must not change the cart")
}

func TestRemoveFromCart(t *testing.T) {
	cart, err := booking.AddToCart(model.Cart{}, 1, "Soup", 500, 1)
	require.NoError(t, err)
	cart, err = booking.AddToCart(cart, 2, "Steak", 2200, 1)
	require.NoError(t, err)

	cart = booking.RemoveFromCart(cart, 1)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, uint64(2), cart.Lines[0].ItemID)

	// Removing an absent item is a no-op.
	cart = booking.RemoveFromCart(cart, 99)
	assert.Len(t, cart.Lines, 1)
}

func TestToOrderRequest(t *testing.T) {
	cart, err := booking.AddToCart(model.Cart{}, 7, "Pasta", 1300, 2)
	require.NoError(t, err)

	lines := booking.ToOrderRequest(cart)
	require.Len(t, lines, 1)
	assert.Equal(t, booking.OrderLine{ItemID: 7, Quantity: 2}, lines[0])
}
