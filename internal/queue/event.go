// Package queue defines the message payloads exchanged over the
// broker and the background consumer that turns them into tickets,
// emails and audit lines.
package queue

// Queue names.  Both are durable.
const (
	ReservationCreatedQueue = "reservation.created"
	ReservationServedQueue  = "reservation.served"
)

// EventLine is one dish inside an event payload, carrying the frozen
// snapshot price so consumers never re-read the catalog.
type EventLine struct {
	ItemName       string `json:"item_name"`
	Quantity       uint32 `json:"quantity"`
	UnitPriceCents uint32 `json:"unit_price_cents"`
}

// ReservationCreatedEvent is published after a reservation commits.
// It contains everything downstream consumers need to render and mail
// the ticket without querying the primary database.
type ReservationCreatedEvent struct {
	ID            string      `json:"event_id"`
	ReservationID uint64      `json:"reservation_id"`
	Kind          string      `json:"kind"`
	ClientID      uint64      `json:"client_id"`
	ClientName    string      `json:"client_name"`
	ClientEmail   string      `json:"client_email"`
	ClientPhone   string      `json:"client_phone,omitempty"`
	SlotDate      string      `json:"slot_date,omitempty"`
	SlotTime      string      `json:"slot_time,omitempty"`
	PartySize     uint32      `json:"party_size"`
	TicketToken   string      `json:"ticket_token"`
	Items         []EventLine `json:"items"`
	TotalCents    uint32      `json:"total_cents"`
	CreatedAt     string      `json:"created_at"`
}

// ReservationServedEvent is published when a scan redeems a ticket.
type ReservationServedEvent struct {
	ID            string `json:"event_id"`
	ReservationID uint64 `json:"reservation_id"`
	ClientID      uint64 `json:"client_id"`
	ClientName    string `json:"client_name"`
	TotalCents    uint32 `json:"total_cents"`
	ServedAt      string `json:"served_at"`
}
