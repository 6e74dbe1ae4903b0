package booking

import "context"

// PriceCatalog is the read-only price lookup collaborator.  The engine
// calls it exactly once per item at order-creation time to build the
// price snapshot; it never writes to the catalog.
type PriceCatalog interface {
	// PriceOf returns the current unit price in cents and the display
	// name for a menu item, or ErrUnknownItem when no such item exists.
	PriceOf(ctx context.Context, itemID uint64) (priceCents uint32, name string, err error)
}
