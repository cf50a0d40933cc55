// Package admins backs the platform admin registry with PostgreSQL.
package admins

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry answers admin membership questions from the admins table.
// It is one half of the dual site-admin check; the user directory's
// flag is the other.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry constructs a Registry.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

// IsValidAdmin reports whether an active admin record exists for the
// user id.
func (r *Registry) IsValidAdmin(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM admins WHERE user_id = $1 AND is_active)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
