package news

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/shared"
)

const articleColumns = `id, author_user_id, store_id, title, body, published_at, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for articles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateArticle inserts an article.
func (r *Repository) CreateArticle(ctx context.Context, a *Article) error {
	const query = `INSERT INTO articles (id, author_user_id, store_id, title, body, published_at, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query, a.ID, a.AuthorUserID, a.StoreID, a.Title, a.Body, a.PublishedAt).
		Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetArticle fetches one article by id.
func (r *Repository) GetArticle(ctx context.Context, id string) (*Article, error) {
	const query = `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`
	return scanArticle(r.pool.QueryRow(ctx, query, id))
}

// ListPublished returns published articles, newest first.
func (r *Repository) ListPublished(ctx context.Context, page, perPage int) ([]Article, shared.Pagination, error) {
	const countQuery = `SELECT COUNT(*) FROM articles WHERE published_at IS NOT NULL AND published_at <= NOW()`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, shared.Pagination{}, err
	}
	pagination := shared.NewPagination(page, perPage, total)

	const query = `SELECT ` + articleColumns + ` FROM articles
		WHERE published_at IS NOT NULL AND published_at <= NOW()
		ORDER BY published_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		out = append(out, *a)
	}
	return out, pagination, rows.Err()
}

// UpdateArticle persists title/body changes.
func (r *Repository) UpdateArticle(ctx context.Context, id, title, body string) (*Article, error) {
	const query = `UPDATE articles SET title = $2, body = $3, updated_at = NOW() WHERE id = $1
		RETURNING ` + articleColumns
	return scanArticle(r.pool.QueryRow(ctx, query, id, title, body))
}

// DeleteArticle removes an article. Returns httpx.ErrNotFound when the
// id does not exist.
func (r *Repository) DeleteArticle(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	var storeID *string
	err := row.Scan(&a.ID, &a.AuthorUserID, &storeID, &a.Title, &a.Body, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if storeID != nil {
		a.StoreID = *storeID
	}
	return &a, nil
}
