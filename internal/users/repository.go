package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository answers aggregate queries for the operator dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CollectStats computes the dashboard counters from live tables.
func (r *Repository) CollectStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM businesses),
			(SELECT COUNT(*) FROM categories),
			(SELECT COUNT(*) FROM items)`).
		Scan(&s.TotalUsers, &s.TotalBusinesses, &s.TotalCategories, &s.TotalItems)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT role, COUNT(*) FROM profiles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	s.UsersByRole = map[string]int64{}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		s.UsersByRole[role] = n
	}
	return &s, rows.Err()
}
