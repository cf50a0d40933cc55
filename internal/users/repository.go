package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// Repository provides PostgreSQL backed persistence for accounts and
// their store role assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUser fetches one user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	const query = `SELECT id, email, name, is_site_admin, is_active, created_at, updated_at FROM users WHERE id = $1`
	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.IsSiteAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	const query = `SELECT id, email, name, is_site_admin, is_active, created_at, updated_at FROM users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsSiteAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// IsSiteAdmin reports the account's site-admin flag. Inactive accounts
// never count as admins.
func (r *Repository) IsSiteAdmin(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT is_site_admin FROM users WHERE id = $1 AND is_active`
	var flagged bool
	err := r.pool.QueryRow(ctx, query, userID).Scan(&flagged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return flagged, nil
}

// StoreRoles returns every store role assignment held by the user.
func (r *Repository) StoreRoles(ctx context.Context, userID string) ([]policy.StoreRole, error) {
	const query = `SELECT store_id, role FROM store_roles WHERE user_id = $1 ORDER BY store_id`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []policy.StoreRole
	for rows.Next() {
		var a policy.StoreRole
		if err := rows.Scan(&a.StoreID, &a.Role); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
