package products

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/vendora/internal/platform/httpx"
)

const productColumns = `id, store_id, name, description, price_cents, currency, is_active, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for products.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, p *Product) error {
	const query = `INSERT INTO products (id, store_id, name, description, price_cents, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query, p.ID, p.StoreID, p.Name, p.Description, p.PriceCents, p.Currency, p.IsActive).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetProduct fetches one product by id.
func (r *Repository) GetProduct(ctx context.Context, id string) (*Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

// ListByStore returns a store's active products ordered by name.
func (r *Repository) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE store_id = $1 AND is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateProduct persists listing changes.
func (r *Repository) UpdateProduct(ctx context.Context, p *Product) error {
	const query = `UPDATE products SET name = $2, description = $3, price_cents = $4, currency = $5, is_active = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Description, p.PriceCents, p.Currency, p.IsActive).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return httpx.ErrNotFound
	}
	return err
}

// DeleteProduct removes a product.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.PriceCents, &p.Currency, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
