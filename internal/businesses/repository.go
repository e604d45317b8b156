package businesses

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

const businessColumns = `id, owner_id, name, slug, logo_url, address, phone, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for businesses.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanBusiness(row pgx.Row) (*Business, error) {
	var b Business
	if err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Slug, &b.LogoURL, &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a new business.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*Business, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO businesses (owner_id, name, slug, logo_url, address, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+businessColumns,
		params.OwnerID, params.Name, params.Slug, params.LogoURL, params.Address, params.Phone)
	return scanBusiness(row)
}

// Get returns the business with the given id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Business, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	return scanBusiness(row)
}

// ListByOwner returns every business owned by the given profile.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Business, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

// List returns a page of all businesses, for administrative listings.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]Business, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	rows, err := r.pool.Query(ctx, `SELECT `+businessColumns+` FROM businesses ORDER BY created_at, id LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func collectBusinesses(rows pgx.Rows) ([]Business, error) {
	var out []Business
	for rows.Next() {
		var b Business
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Slug, &b.LogoURL, &b.Address, &b.Phone, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Count returns the total number of businesses.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Update mutates the given fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Business, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE businesses
		SET name = COALESCE($2, name),
		    slug = COALESCE($3, slug),
		    logo_url = COALESCE($4, logo_url),
		    address = COALESCE($5, address),
		    phone = COALESCE($6, phone),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+businessColumns,
		id, params.Name, params.Slug, params.LogoURL, params.Address, params.Phone)
	return scanBusiness(row)
}

// IsOwner reports whether the profile owns the business. The query shape is
// identical for a missing and a foreign business, so callers cannot tell the
// two apart by error or timing.
func (r *Repository) IsOwner(ctx context.Context, id, profileID uuid.UUID) (bool, error) {
	var owned bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM businesses WHERE id = $1 AND owner_id = $2)`, id, profileID).Scan(&owned)
	if err != nil {
		return false, err
	}
	return owned, nil
}

// Purge removes the business together with its categories and items,
// strictly bottom-up inside one transaction: items, then categories, then
// the business row. Purging an already-deleted business is a no-op.
func (r *Repository) Purge(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM items
			WHERE category_id IN (SELECT id FROM categories WHERE business_id = $1)`, id); err != nil {
			return fmt.Errorf("businesses: purge items: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE business_id = $1`, id); err != nil {
			return fmt.Errorf("businesses: purge categories: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id); err != nil {
			return fmt.Errorf("businesses: purge business: %w", err)
		}
		return nil
	})
}
