package model

import "time"

// Category groups menu items for browsing (starters, mains, desserts...).
// Categories are plain catalog data with no concurrency concerns; the
// booking engine never writes to them.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique category name.
//  CreatedAt – creation timestamp.
type Category struct {
	ID        uint64    // categories.id
	Name      string    // categories.name
	CreatedAt time.Time // categories.created_at
}

// MenuItem is a dish offered by the restaurant.  The engine reads
// PriceCents exactly once at order-creation time to build line-item
// price snapshots; later price edits never touch existing orders.
//
// Fields:
//  ID          – primary key identifier.
//  CategoryID  – owning category (nullable in the database).
//  Name        – dish name.
//  Description – free-text description shown on the menu.
//  PriceCents  – current unit price in cents.
//  ImageURL    – optional picture for the public menu.
//  IsActive    – whether the dish is currently orderable.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type MenuItem struct {
	ID          uint64    // menu_items.id
	CategoryID  *uint64   // menu_items.category_id (nullable)
	Name        string    // menu_items.name
	Description string    // menu_items.description
	PriceCents  uint32    // menu_items.price_cents
	ImageURL    *string   // menu_items.image_url (nullable)
	IsActive    bool      // menu_items.is_active
	CreatedAt   time.Time // menu_items.created_at
	UpdatedAt   time.Time // menu_items.updated_at
}
