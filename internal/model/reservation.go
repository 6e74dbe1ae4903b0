package model

import "time"

// Reservation status values.  Transitions are monotonic: PENDING may
// move to SERVED or CANCELLED exactly once; SERVED and CANCELLED are
// terminal.  Only the serving state machine writes this field.
const (
	StatusPending   = "PENDING"
	StatusServed    = "SERVED"
	StatusCancelled = "CANCELLED"
)

// Kind discriminates the two creation paths: a food order placed from
// the cart versus a table booking for a time slot.  Only bookings
// consume slot capacity.
const (
	KindOrder   = "ORDER"
	KindBooking = "BOOKING"
)

// Slot identifies one bookable seating period as a (date, time) pair.
// It is a derived key, not a stored row of its own; slot capacity is
// evaluated per pair.  Date uses YYYY-MM-DD and Time uses HH:MM.
type Slot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Reservation is the root aggregate produced by the order builder.  It
// covers both food orders and table bookings and owns its line items.
// TotalCents is fixed at creation from line-item snapshots; line items
// never change afterwards so the stored total can never drift.
//
// Fields:
//  ID          – primary key identifier.
//  ClientID    – customer the reservation belongs to.
//  Kind        – ORDER or BOOKING.
//  Slot        – seating period; zero value for plain food orders.
//  PartySize   – number of guests for a booking (1 for orders).
//  Status      – PENDING, SERVED or CANCELLED.
//  TotalCents  – total price in cents across all line items.
//  TicketToken – opaque single-use ticket credential, globally unique.
//  Message     – optional free-text note from the customer.
//  CreatedAt   – creation timestamp.
//  ServedAt    – when the ticket was redeemed (null until served).
type Reservation struct {
	ID          uint64     // reservations.id
	ClientID    uint64     // reservations.client_id
	Kind        string     // reservations.kind
	Slot        Slot       // reservations.slot_date + reservations.slot_time
	PartySize   uint32     // reservations.party_size
	Status      string     // reservations.status
	TotalCents  uint32     // reservations.total_cents
	TicketToken string     // reservations.ticket_token (unique)
	Message     *string    // reservations.message (nullable)
	CreatedAt   time.Time  // reservations.created_at
	ServedAt    *time.Time // reservations.served_at (nullable)
}

// LineItem records one dish on a reservation.  UnitPriceCents is the
// price snapshot copied from the menu item at creation and is
// immutable from then on.
//
// Fields:
//  ID             – primary key identifier.
//  ReservationID  – owning reservation.
//  ItemID         – menu item ordered.
//  ItemName       – dish name at order time, for display and tickets.
//  Quantity       – number of units; always > 0.
//  UnitPriceCents – frozen unit price snapshot in cents.
type LineItem struct {
	ID             uint64 // reservation_items.id
	ReservationID  uint64 // reservation_items.reservation_id
	ItemID         uint64 // reservation_items.item_id
	ItemName       string // reservation_items.item_name
	Quantity       uint32 // reservation_items.quantity
	UnitPriceCents uint32 // reservation_items.unit_price_cents
}

// LineTotalCents returns quantity times the frozen unit price.
func (li LineItem) LineTotalCents() uint32 {
	return li.Quantity * li.UnitPriceCents
}

// TotalCents recomputes a reservation total from its line items.  The
// serving state machine uses this for verification snapshots so the
// reported total always derives from the immutable snapshots.
func TotalCents(items []LineItem) uint32 {
	var sum uint32
	for _, li := range items {
		sum += li.LineTotalCents()
	}
	return sum
}
