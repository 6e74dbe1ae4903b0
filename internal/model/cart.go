package model

// CartLine is one dish in a session cart.  UnitPriceCents is only a
// hint captured when the line was added; it is shown back to the
// customer but never trusted at checkout, where the order builder
// performs the single authoritative price read.
type CartLine struct {
	ItemID         uint64 `json:"item_id"`
	Name           string `json:"name"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
	Quantity       uint32 `json:"quantity"`
}

// Cart is the ephemeral, session-scoped shopping cart.  It is a plain
// value passed through handlers and persisted between requests by the
// session store collaborator; the engine itself never stores it.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// SubtotalCents sums the advertised line prices.  Display only.
func (c Cart) SubtotalCents() uint32 {
	var sum uint32
	for _, l := range c.Lines {
		sum += l.UnitPriceCents * l.Quantity
	}
	return sum
}
