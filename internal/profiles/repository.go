package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/menuforge/menuforge/internal/shared"
)

const profileColumns = `id, identity_id, email, display_name, avatar_url, role, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for profiles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.IdentityID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByID returns the profile with the given id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

// FindByIdentityID returns the profile linked to the given provider identity.
func (r *Repository) FindByIdentityID(ctx context.Context, identityID string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE identity_id = $1`, identityID)
	return scanProfile(row)
}

// LinkIdentity adopts an unlinked legacy profile matching the identity's
// email by writing the identity id onto it. The WHERE clause makes the
// migration idempotent: a second run matches nothing and reports not found,
// and a row already linked elsewhere is never overwritten.
func (r *Repository) LinkIdentity(ctx context.Context, email, identityID string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET identity_id = $1, updated_at = NOW()
		WHERE lower(email) = lower($2) AND identity_id IS NULL
		RETURNING `+profileColumns, identityID, email)
	return scanProfile(row)
}

// UpsertByIdentity provisions a profile for a newly seen identity in a single
// statement, so a retried request can never observe a partial write. On
// conflict the provider email wins but stored display fields are preserved.
func (r *Repository) UpsertByIdentity(ctx context.Context, params UpsertParams) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (identity_id, email, display_name, avatar_url, role)
		VALUES ($1, $2, $3, $4, 'user')
		ON CONFLICT (identity_id) DO UPDATE
		SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING `+profileColumns,
		params.IdentityID, params.Email, params.DisplayName, params.AvatarURL)
	p, err := scanProfile(row)
	if err != nil {
		return nil, mapUpsertError(err, params.IdentityID)
	}
	return p, nil
}

// mapUpsertError surfaces a unique-constraint collision as a provisioning
// failure rather than a raw constraint error. It fires when the email
// belongs to a row we could neither find nor link.
func mapUpsertError(err error, identityID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: identity %s: %v", shared.ErrProfileInit, identityID, err)
	}
	return err
}

// Update mutates the caller-editable display fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles
		SET display_name = COALESCE($2, display_name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+profileColumns, id, params.DisplayName, params.AvatarURL)
	return scanProfile(row)
}

// UpdateRole assigns a new role to the profile.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1
		RETURNING `+profileColumns, id, role)
	return scanProfile(row)
}

// Delete removes the profile row. Deleting an absent row is not an error so
// a retried account purge can pass through this step unchanged.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return err
}

// List returns a page of profiles ordered by creation time.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]Profile, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+profileColumns+` FROM profiles
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.IdentityID, &p.Email, &p.DisplayName, &p.AvatarURL, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the total number of profiles.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
