package stores

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/vendora/internal/platform/db"
	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// Repository provides PostgreSQL backed persistence for stores and
// their role assignments. It also serves as the store directory the
// policy checker confirms role assignments against.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateStore inserts a store and grants the creator the admin role in
// one transaction.
func (r *Repository) CreateStore(ctx context.Context, s *Store) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertStore = `INSERT INTO stores (id, slug, name, owner_user_id, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING created_at, updated_at`
		err := tx.QueryRow(ctx, insertStore, s.ID, s.Slug, s.Name, s.OwnerID, s.IsActive).Scan(&s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return httpx.ErrDuplicate
			}
			return err
		}

		const insertRole = `INSERT INTO store_roles (user_id, store_id, role) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, store_id) DO UPDATE SET role = EXCLUDED.role`
		_, err = tx.Exec(ctx, insertRole, s.OwnerID, s.ID, string(policy.RoleAdmin))
		return err
	})
}

// GetStore fetches one store by id.
func (r *Repository) GetStore(ctx context.Context, id string) (*Store, error) {
	const query = `SELECT id, slug, name, owner_user_id, is_active, created_at, updated_at FROM stores WHERE id = $1`
	return r.scanStore(r.pool.QueryRow(ctx, query, id))
}

// GetStoreBySlug fetches one store by slug.
func (r *Repository) GetStoreBySlug(ctx context.Context, slug string) (*Store, error) {
	const query = `SELECT id, slug, name, owner_user_id, is_active, created_at, updated_at FROM stores WHERE slug = $1`
	return r.scanStore(r.pool.QueryRow(ctx, query, slug))
}

// ListStores returns active stores ordered by name.
func (r *Repository) ListStores(ctx context.Context) ([]Store, error) {
	const query = `SELECT id, slug, name, owner_user_id, is_active, created_at, updated_at FROM stores WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.OwnerID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStore persists name changes. Returns httpx.ErrNotFound when the
// store does not exist.
func (r *Repository) UpdateStore(ctx context.Context, id, name string) (*Store, error) {
	const query = `UPDATE stores SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, slug, name, owner_user_id, is_active, created_at, updated_at`
	return r.scanStore(r.pool.QueryRow(ctx, query, id, name))
}

// HasStoreRole implements policy.StoreDirectory: it confirms a role
// assignment record is currently present.
func (r *Repository) HasStoreRole(ctx context.Context, userID string, assignment policy.StoreRole) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM store_roles WHERE user_id = $1 AND store_id = $2 AND role = $3)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, assignment.StoreID, string(assignment.Role)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertStoreRole grants or changes a role for a user on a store.
func (r *Repository) UpsertStoreRole(ctx context.Context, userID, storeID string, role policy.Role) error {
	const query = `INSERT INTO store_roles (user_id, store_id, role) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, store_id) DO UPDATE SET role = EXCLUDED.role`
	_, err := r.pool.Exec(ctx, query, userID, storeID, string(role))
	return err
}

// RemoveStoreRole revokes a user's role on a store.
func (r *Repository) RemoveStoreRole(ctx context.Context, userID, storeID string) error {
	const query = `DELETE FROM store_roles WHERE user_id = $1 AND store_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, storeID)
	return err
}

func (r *Repository) scanStore(row pgx.Row) (*Store, error) {
	var s Store
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.OwnerID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
