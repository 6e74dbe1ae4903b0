package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/restaurant-eugene/booking-api/internal/model"
)

// ClientRepo stores customer records.  Clients are created either at
// registration or lazily at guest checkout, where the phone number is
// the matching key (the restaurant's walk-in convention).
type ClientRepo struct {
	db *sql.DB
}

// NewClientRepo returns a ClientRepo bound to the given database.
func NewClientRepo(db *sql.DB) *ClientRepo { return &ClientRepo{db: db} }

// GetByID fetches a client by id.
func (r *ClientRepo) GetByID(ctx context.Context, id uint64) (*model.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, first_name, email, phone, created_at FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

// GetByPhone fetches a client by phone number.  sql.ErrNoRows when no
// client uses that number.
func (r *ClientRepo) GetByPhone(ctx context.Context, phone string) (*model.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, first_name, email, phone, created_at FROM clients WHERE phone = ?`, phone)
	return scanClient(row)
}

// GetByEmail fetches a client by normalized email.
func (r *ClientRepo) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, first_name, email, phone, created_at FROM clients WHERE email = ?`, email)
	return scanClient(row)
}

// Create inserts a client and returns its id.  Duplicate emails map
// to ErrConflict.
func (r *ClientRepo) Create(ctx context.Context, c *model.Client) (uint64, error) {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (name, first_name, email, phone) VALUES (?, ?, ?, ?)`,
		c.Name, c.FirstName, c.Email, c.Phone,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	return c.ID, nil
}

// FindOrCreateGuest resolves a guest checkout to a client record.  An
// existing client with the same phone wins; otherwise a new record is
// created with a placeholder email when none was given, exactly the
// walk-in flow of the ordering counter.
func (r *ClientRepo) FindOrCreateGuest(ctx context.Context, name, email, phone string) (*model.Client, error) {
	if phone != "" {
		c, err := r.GetByPhone(ctx, phone)
		if err == nil {
			return c, nil
		}
		if err != sql.ErrNoRows {
			return nil, err
		}
	}
	if email == "" {
		email = phone + "@guest.invalid"
	}
	c := &model.Client{Name: name, Email: email}
	if phone != "" {
		c.Phone = &phone
	}
	if _, err := r.Create(ctx, c); err != nil {
		if err == ErrConflict {
			// Raced with another checkout or the email already exists;
			// fall back to the stored record.
			return r.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return c, nil
}

func scanClient(row rowScanner) (*model.Client, error) {
	var (
		c         model.Client
		firstName sql.NullString
		phone     sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &firstName, &c.Email, &phone, &c.CreatedAt); err != nil {
		return nil, err
	}
	if firstName.Valid {
		f := firstName.String
		c.FirstName = &f
	}
	if phone.Valid {
		p := phone.String
		c.Phone = &p
	}
	return &c, nil
}
