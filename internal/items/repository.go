package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menuforge/menuforge/internal/platform/db"
	"github.com/menuforge/menuforge/internal/shared"
)

const itemColumns = `id, category_id, name, description, price_cents, image_url, position, is_available, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanItem(row pgx.Row) (*Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.PriceCents,
		&it.ImageURL, &it.Position, &it.IsAvailable, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// Create inserts a new item at the end of its category when no position is
// given.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO items (category_id, name, description, price_cents, image_url, position)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, 0), (SELECT COALESCE(MAX(position), 0) + 1 FROM items WHERE category_id = $1)))
		RETURNING `+itemColumns,
		params.CategoryID, params.Name, params.Description, params.PriceCents, params.ImageURL, params.Position)
	return scanItem(row)
}

// Get returns the item with the given id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	return scanItem(row)
}

// ListByCategory returns the category's items in menu order.
func (r *Repository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE category_id = $1 ORDER BY position, created_at`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.CategoryID, &it.Name, &it.Description, &it.PriceCents,
			&it.ImageURL, &it.Position, &it.IsAvailable, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Update mutates the given fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE items
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price_cents = COALESCE($4, price_cents),
		    image_url = COALESCE($5, image_url),
		    position = COALESCE($6, position),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns,
		id, params.Name, params.Description, params.PriceCents, params.ImageURL, params.Position)
	return scanItem(row)
}

// SetAvailability flips the sold-out flag without touching other fields.
func (r *Repository) SetAvailability(ctx context.Context, id uuid.UUID, available bool) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE items SET is_available = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+itemColumns, id, available)
	return scanItem(row)
}

// Delete removes the item. Absent rows are not an error.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}

// Reorder rewrites positions for the given item ids within a category.
// Ids outside the category are ignored rather than reassigned.
func (r *Repository) Reorder(ctx context.Context, categoryID uuid.UUID, orderedIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(ctx, `
				UPDATE items SET position = $1, updated_at = NOW()
				WHERE id = $2 AND category_id = $3`, i+1, id, categoryID); err != nil {
				return fmt.Errorf("items: reorder: %w", err)
			}
		}
		return nil
	})
}

// IsOwner reports whether the profile owns the item via its category's
// business. Absent and foreign items produce the same result shape.
func (r *Repository) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM items i
			JOIN categories c ON c.id = i.category_id
			JOIN businesses b ON b.id = c.business_id
			WHERE i.id = $1 AND b.owner_id = $2
		)`, id, profileID).Scan(&owned)
	if err != nil {
		return false, err
	}
	return owned, nil
}
