package categories

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

const categoryColumns = `id, business_id, name, position, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for categories.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category at the end of the business's menu when no
// position is given.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (business_id, name, position)
		VALUES ($1, $2, COALESCE(NULLIF($3, 0), (SELECT COALESCE(MAX(position), 0) + 1 FROM categories WHERE business_id = $1)))
		RETURNING `+categoryColumns,
		params.BusinessID, params.Name, params.Position)
	return scanCategory(row)
}

// Get returns the category with the given id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	return scanCategory(row)
}

// ListByBusiness returns the business's categories in menu order.
func (r *Repository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE business_id = $1 ORDER BY position, created_at`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Position, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update mutates the given fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE categories
		SET name = COALESCE($2, name),
		    position = COALESCE($3, position),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+categoryColumns, id, params.Name, params.Position)
	return scanCategory(row)
}

// Delete removes the category and its items, items first.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM items WHERE category_id = $1`, id); err != nil {
			return fmt.Errorf("categories: delete items: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
			return fmt.Errorf("categories: delete category: %w", err)
		}
		return nil
	})
}

// Reorder rewrites positions for the given category ids within a business.
// Ids outside the business are ignored rather than reassigned.
func (r *Repository) Reorder(ctx context.Context, businessID uuid.UUID, orderedIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(ctx, `
				UPDATE categories SET position = $1, updated_at = NOW()
				WHERE id = $2 AND business_id = $3`, i+1, id, businessID); err != nil {
				return fmt.Errorf("categories: reorder: %w", err)
			}
		}
		return nil
	})
}

// IsOwner reports whether the profile owns the category via its business.
// The parent chain is resolved inside the query; absent and foreign
// categories produce the same result shape.
func (r *Repository) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM categories c
			JOIN businesses b ON b.id = c.business_id
			WHERE c.id = $1 AND b.owner_id = $2
		)`, id, profileID).Scan(&owned)
	if err != nil {
		return false, err
	}
	return owned, nil
}
