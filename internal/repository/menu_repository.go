package repository

import (
	"context"
	"database/sql"

	"github.com/restaurant-eugene/booking-api/internal/booking"
	"github.com/restaurant-eugene/booking-api/internal/model"
)

// MenuRepo provides catalog access: category and menu-item CRUD for
// staff plus the read-only price lookup the booking engine uses for
// snapshots.  It implements booking.PriceCatalog.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// PriceOf returns the current price and name of an active menu item.
// Inactive or missing items map to booking.ErrUnknownItem, so retired
// dishes cannot enter new orders.
func (r *MenuRepo) PriceOf(ctx context.Context, itemID uint64) (uint32, string, error) {
	var (
		price uint32
		name  string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT price_cents, name FROM menu_items WHERE id = ? AND is_active = 1`,
		itemID,
	).Scan(&price, &name)
	if err == sql.ErrNoRows {
		return 0, "", booking.ErrUnknownItem
	}
	if err != nil {
		return 0, "", err
	}
	return price, name, nil
}

// ListCategories returns all categories ordered by name.
func (r *MenuRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory inserts a category.  Duplicate names map to
// ErrConflict (the name column is unique).
func (r *MenuRepo) CreateCategory(ctx context.Context, name string) (uint64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
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
	return uint64(id), nil
}

// DeleteCategory removes a category; items keep existing with a null
// category (ON DELETE SET NULL).
func (r *MenuRepo) DeleteCategory(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListItems returns menu items, optionally restricted to active ones,
// ordered by category then name for stable public menus.
func (r *MenuRepo) ListItems(ctx context.Context, activeOnly bool) ([]model.MenuItem, error) {
	q := `SELECT id, category_id, name, description, price_cents, image_url, is_active, created_at, updated_at
	      FROM menu_items`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY category_id, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

// GetItem loads a single menu item by id.
func (r *MenuRepo) GetItem(ctx context.Context, id uint64) (*model.MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, category_id, name, description, price_cents, image_url, is_active, created_at, updated_at
		 FROM menu_items WHERE id = ?`, id)
	return scanMenuItem(row)
}

// CreateItem inserts a menu item and returns its id.
func (r *MenuRepo) CreateItem(ctx context.Context, item *model.MenuItem) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (category_id, name, description, price_cents, image_url, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.CategoryID, item.Name, item.Description, item.PriceCents, item.ImageURL, item.IsActive,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateItem rewrites the mutable fields of a menu item.  Existing
// reservations are unaffected: their line items hold price snapshots.
func (r *MenuRepo) UpdateItem(ctx context.Context, item *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET category_id = ?, name = ?, description = ?, price_cents = ?, image_url = ?, is_active = ?
		 WHERE id = ?`,
		item.CategoryID, item.Name, item.Description, item.PriceCents, item.ImageURL, item.IsActive, item.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteItem retires a menu item.  Soft delete: the row stays so old
// line items keep a valid reference, but it disappears from the
// catalog and from PriceOf.
func (r *MenuRepo) DeleteItem(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanMenuItem(row rowScanner) (*model.MenuItem, error) {
	var (
		item       model.MenuItem
		categoryID sql.NullInt64
		imageURL   sql.NullString
	)
	err := row.Scan(&item.ID, &categoryID, &item.Name, &item.Description,
		&item.PriceCents, &imageURL, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		cid := uint64(categoryID.Int64)
		item.CategoryID = &cid
	}
	if imageURL.Valid {
		u := imageURL.String
		item.ImageURL = &u
	}
	return &item, nil
}
