package repository

import (
	"context"
	"database/sql"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// SlotRepo maintains the per-slot reservation counters backing the
// capacity guard.  The slot_counters row is the single authoritative
// counter for its (date, time) pair; admission is decided by one
// guarded UPDATE so concurrent bookings can never overshoot capacity,
// not even transiently.  It implements booking.SlotCounter.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// Increment performs the atomic conditional check-and-increment.  The
// counter row is created on first use; the guarded UPDATE succeeds
// only while reserved < max, and its rows-affected count is the
// admission verdict.  There is no separate read, so there is no race
// window between checking and claiming.
func (r *SlotRepo) Increment(ctx context.Context, slot model.Slot, max int) (bool, error) {
	// Idempotent seed of the counter row.
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO slot_counters (slot_date, slot_time, reserved) VALUES (?, ?, 0)`,
		slot.Date, slot.Time,
	)
	if err != nil {
		if isTransientConflict(err) {
			return false, booking.ErrPersistenceConflict
		}
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE slot_counters SET reserved = reserved + 1
		 WHERE slot_date = ? AND slot_time = ? AND reserved < ?`,
		slot.Date, slot.Time, max,
	)
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

// Decrement releases one unit of capacity, flooring at zero so a
// double release can never open phantom capacity below an empty slot.
func (r *SlotRepo) Decrement(ctx context.Context, slot model.Slot) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE slot_counters SET reserved = reserved - 1
		 WHERE slot_date = ? AND slot_time = ? AND reserved > 0`,
		slot.Date, slot.Time,
	)
	if isTransientConflict(err) {
		return booking.ErrPersistenceConflict
	}
	return err
}

// Reserved returns the current admitted count for a slot.  Zero when
// the counter row does not exist yet.  Read-only, used by staff views.
func (r *SlotRepo) Reserved(ctx context.Context, slot model.Slot) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT reserved FROM slot_counters WHERE slot_date = ? AND slot_time = ?`,
		slot.Date, slot.Time,
	).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return n, err
}
