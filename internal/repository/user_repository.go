package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/restaurant-eugene/booking-api/internal/utils"
)

// User mirrors the 'users' table.  Customer accounts carry a client_id
// linking them to their customer record; staff accounts do not.
type User struct {
	ID           uint64
	Email        string
	PasswordHash string
	Role         string
	ClientID     *uint64
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, clientID *uint64, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, client_id) VALUES (?,?,?,?)",
		email, hash, role, clientID)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, "SELECT id,email,password_hash,role,client_id,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return r.get(ctx, "SELECT id,email,password_hash,role,client_id,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1", id)
}

func (r *UserRepo) get(ctx context.Context, query string, arg interface{}) (User, error) {
	var (
		u        User
		clientID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &clientID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if clientID.Valid {
		cid := uint64(clientID.Int64)
		u.ClientID = &cid
	}
	return u, err
}
