package booking

import "github.com/restaurant-eugene/booking-api/internal/model"

// OrderLine is one (item, quantity) pair submitted for order creation.
// Prices are deliberately absent: the order builder resolves them in a
// single authoritative catalog read.
type OrderLine struct {
	ItemID   uint64 `json:"item_id"`
	Quantity uint32 `json:"quantity"`
}

// AddToCart merges an addition into the cart and returns the updated
// value.  Repeated additions of the same item sum their quantities, so
// cumulative quantity per item is independent of interleaving order.
// The price is a display hint recorded on first addition.  A quantity
// of zero or less is rejected with ErrInvalidQuantity and leaves the
// input untouched.
func AddToCart(cart model.Cart, itemID uint64, name string, priceCents uint32, quantity uint32) (model.Cart, error) {
	if quantity == 0 {
		return cart, ErrInvalidQuantity
	}
	out := model.Cart{Lines: make([]model.CartLine, len(cart.Lines))}
	copy(out.Lines, cart.Lines)
	for i := range out.Lines {
		if out.Lines[i].ItemID == itemID {
			out.Lines[i].Quantity += quantity
			return out, nil
		}
	}
	out.Lines = append(out.Lines, model.CartLine{
		ItemID:         itemID,
		Name:           name,
		UnitPriceCents: priceCents,
		Quantity:       quantity,
	})
	return out, nil
}

// RemoveFromCart drops every line for the given item and returns the
// updated cart.  Removing an absent item is a no-op.
func RemoveFromCart(cart model.Cart, itemID uint64) model.Cart {
	out := model.Cart{Lines: make([]model.CartLine, 0, len(cart.Lines))}
	for _, l := range cart.Lines {
		if l.ItemID != itemID {
			out.Lines = append(out.Lines, l)
		}
	}
	return out
}

// ToOrderRequest snapshots the cart contents for submission.  It
// returns only (item, quantity) pairs; resolving prices is the order
// builder's job so that the snapshot comes from one catalog read at
// order time, not from stale cart hints.
func ToOrderRequest(cart model.Cart) []OrderLine {
	lines := make([]OrderLine, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, OrderLine{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	return lines
}
