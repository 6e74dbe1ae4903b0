package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// ReservationRepo persists reservations and their line items.  It
// implements booking.ReservationStore: the header+items write is a
// single transaction and the serve/cancel transitions are single
// conditional UPDATE statements, so the status check and write can
// never be split by a concurrent scanner.  All timestamps are UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateWithItems inserts the reservation header and all line items
// atomically and fills in the generated identifiers.  A duplicate
// ticket token maps to booking.ErrTokenCollision; deadlocks map to
// booking.ErrPersistenceConflict.  On any error nothing is visible to
// other components.
func (r *ReservationRepo) CreateWithItems(ctx context.Context, res *model.Reservation, items []model.LineItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var slotDate, slotTime interface{}
	if res.Kind == model.KindBooking {
		slotDate, slotTime = res.Slot.Date, res.Slot.Time
	}
	const ins = `INSERT INTO reservations
		(client_id, kind, slot_date, slot_time, party_size, status, total_cents, ticket_token, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		res.ClientID, res.Kind, slotDate, slotTime, res.PartySize,
		res.Status, res.TotalCents, res.TicketToken, res.Message,
	)
	if err != nil {
		switch {
		case isDuplicateKey(err):
			return booking.ErrTokenCollision
		case isTransientConflict(err):
			return booking.ErrPersistenceConflict
		default:
			return err
		}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	if len(items) > 0 {
		query := `INSERT INTO reservation_items (reservation_id, item_id, item_name, quantity, unit_price_cents) VALUES `
		args := make([]interface{}, 0, len(items)*5)
		for i := range items {
			if i > 0 {
				query += ","
			}
			query += "(?, ?, ?, ?, ?)"
			items[i].ReservationID = res.ID
			args = append(args, res.ID, items[i].ItemID, items[i].ItemName, items[i].Quantity, items[i].UnitPriceCents)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isTransientConflict(err) {
				return booking.ErrPersistenceConflict
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		if isTransientConflict(err) {
			return booking.ErrPersistenceConflict
		}
		return err
	}
	committed = true
	return nil
}

// FindByToken loads a reservation and its line items by ticket token.
// Unknown tokens map to booking.ErrTokenNotFound.
func (r *ReservationRepo) FindByToken(ctx context.Context, token string) (*model.Reservation, []model.LineItem, error) {
	const q = `SELECT id, client_id, kind, slot_date, slot_time, party_size, status,
	                  total_cents, ticket_token, message, created_at, served_at
	           FROM reservations WHERE ticket_token = ?`
	res, err := r.scanReservation(r.db.QueryRowContext(ctx, q, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, booking.ErrTokenNotFound
		}
		return nil, nil, err
	}
	items, err := r.itemsFor(ctx, res.ID)
	if err != nil {
		return nil, nil, err
	}
	return res, items, nil
}

// MarkServed performs the Pending→Served transition as one conditional
// update.  The WHERE clause carries the status predicate, so of any
// number of concurrent calls exactly one affects a row.
func (r *ReservationRepo) MarkServed(ctx context.Context, token string) (bool, error) {
	return r.conditionalTransition(ctx, token,
		`UPDATE reservations SET status = ?, served_at = UTC_TIMESTAMP()
		 WHERE ticket_token = ? AND status = ?`,
		model.StatusServed)
}

// MarkCancelled performs the Pending→Cancelled transition with the
// same single-statement discipline as MarkServed.
func (r *ReservationRepo) MarkCancelled(ctx context.Context, token string) (bool, error) {
	return r.conditionalTransition(ctx, token,
		`UPDATE reservations SET status = ?
		 WHERE ticket_token = ? AND status = ?`,
		model.StatusCancelled)
}

func (r *ReservationRepo) conditionalTransition(ctx context.Context, token, query, toStatus string) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, toStatus, token, model.StatusPending)
	if err != nil {
		if isTransientConflict(err) {
			return false, booking.ErrPersistenceConflict
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// GetByIDForClient returns one reservation with its items, enforcing
// ownership.  sql.ErrNoRows when the reservation does not exist and
// ErrForbidden when it belongs to another client.
func (r *ReservationRepo) GetByIDForClient(ctx context.Context, reservationID, clientID uint64) (*model.Reservation, []model.LineItem, error) {
	const q = `SELECT id, client_id, kind, slot_date, slot_time, party_size, status,
	                  total_cents, ticket_token, message, created_at, served_at
	           FROM reservations WHERE id = ?`
	res, err := r.scanReservation(r.db.QueryRowContext(ctx, q, reservationID))
	if err != nil {
		return nil, nil, err
	}
	if res.ClientID != clientID {
		return nil, nil, ErrForbidden
	}
	items, err := r.itemsFor(ctx, res.ID)
	if err != nil {
		return nil, nil, err
	}
	return res, items, nil
}

// ListByClient returns all reservations for a client, newest first,
// with line items populated in a single follow-up query.
func (r *ReservationRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Reservation, map[uint64][]model.LineItem, error) {
	const q = `SELECT id, client_id, kind, slot_date, slot_time, party_size, status,
	                  total_cents, ticket_token, message, created_at, served_at
	           FROM reservations WHERE client_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	reservations := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := r.scanReservationRows(rows)
		if err != nil {
			return nil, nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(reservations) == 0 {
		return reservations, map[uint64][]model.LineItem{}, nil
	}
	ids := make([]interface{}, 0, len(reservations))
	placeholders := make([]string, 0, len(reservations))
	for _, res := range reservations {
		ids = append(ids, res.ID)
		placeholders = append(placeholders, "?")
	}
	itemQ := `SELECT id, reservation_id, item_id, item_name, quantity, unit_price_cents
	          FROM reservation_items
	          WHERE reservation_id IN (` + strings.Join(placeholders, ",") + `)
	          ORDER BY reservation_id, id`
	irows, err := r.db.QueryContext(ctx, itemQ, ids...)
	if err != nil {
		return nil, nil, err
	}
	defer irows.Close()
	itemsByRes := make(map[uint64][]model.LineItem)
	for irows.Next() {
		var li model.LineItem
		if err := irows.Scan(&li.ID, &li.ReservationID, &li.ItemID, &li.ItemName, &li.Quantity, &li.UnitPriceCents); err != nil {
			return nil, nil, err
		}
		itemsByRes[li.ReservationID] = append(itemsByRes[li.ReservationID], li)
	}
	if err := irows.Err(); err != nil {
		return nil, nil, err
	}
	return reservations, itemsByRes, nil
}

// ServedClientSummary is one row of the staff "served clients" view:
// how many times a client has been served and when the last service
// happened.  Computed by aggregate query over the retained history.
type ServedClientSummary struct {
	ClientID    uint64    `json:"client_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       *string   `json:"phone,omitempty"`
	TotalServed uint32    `json:"total_served"`
	LastServed  time.Time `json:"last_served"`
}

// ServedClients returns the rollup of clients with at least one served
// reservation, ordered by name.
func (r *ReservationRepo) ServedClients(ctx context.Context) ([]ServedClientSummary, error) {
	const q = `SELECT c.id, c.name, c.email, c.phone,
	                  COUNT(r.id), MAX(r.served_at)
	           FROM clients c
	           JOIN reservations r ON r.client_id = c.id
	           WHERE r.status = ?
	           GROUP BY c.id, c.name, c.email, c.phone
	           ORDER BY c.name ASC`
	rows, err := r.db.QueryContext(ctx, q, model.StatusServed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ServedClientSummary, 0)
	for rows.Next() {
		var (
			s     ServedClientSummary
			phone sql.NullString
			last  sql.NullTime
		)
		if err := rows.Scan(&s.ClientID, &s.Name, &s.Email, &phone, &s.TotalServed, &last); err != nil {
			return nil, err
		}
		if phone.Valid {
			p := phone.String
			s.Phone = &p
		}
		if last.Valid {
			s.LastServed = last.Time.UTC()
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *ReservationRepo) scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res      model.Reservation
		slotDate sql.NullString
		slotTime sql.NullString
		message  sql.NullString
		servedAt sql.NullTime
	)
	err := row.Scan(
		&res.ID, &res.ClientID, &res.Kind, &slotDate, &slotTime, &res.PartySize,
		&res.Status, &res.TotalCents, &res.TicketToken, &message, &res.CreatedAt, &servedAt,
	)
	if err != nil {
		return nil, err
	}
	if slotDate.Valid {
		res.Slot.Date = slotDate.String
	}
	if slotTime.Valid {
		res.Slot.Time = slotTime.String
	}
	if message.Valid {
		m := message.String
		res.Message = &m
	}
	if servedAt.Valid {
		t := servedAt.Time.UTC()
		res.ServedAt = &t
	}
	return &res, nil
}

func (r *ReservationRepo) scanReservationRows(rows *sql.Rows) (*model.Reservation, error) {
	return r.scanReservation(rows)
}

func (r *ReservationRepo) itemsFor(ctx context.Context, reservationID uint64) ([]model.LineItem, error) {
	const q = `SELECT id, reservation_id, item_id, item_name, quantity, unit_price_cents
	           FROM reservation_items WHERE reservation_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.LineItem, 0)
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.ID, &li.ReservationID, &li.ItemID, &li.ItemName, &li.Quantity, &li.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
