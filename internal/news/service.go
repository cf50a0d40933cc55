package news

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/shared"
)

// RepositoryPort defines data access methods for articles.
type RepositoryPort interface {
	CreateArticle(ctx context.Context, a *Article) error
	GetArticle(ctx context.Context, id string) (*Article, error)
	ListPublished(ctx context.Context, page, perPage int) ([]Article, shared.Pagination, error)
	UpdateArticle(ctx context.Context, id, title, body string) (*Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// Service handles article business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// PublishArticle creates an article visible immediately.
func (s *Service) PublishArticle(ctx context.Context, authorID, storeID, title, body string) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(body) == "" {
		return nil, httpx.ErrValidation
	}
	now := time.Now()
	article := &Article{
		ID:           uuid.NewString(),
		AuthorUserID: authorID,
		StoreID:      storeID,
		Title:        title,
		Body:         body,
		PublishedAt:  &now,
	}
	if err := s.repo.CreateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// GetArticle returns one article.
func (s *Service) GetArticle(ctx context.Context, id string) (*Article, error) {
	return s.repo.GetArticle(ctx, id)
}

// ListPublished returns published articles with pagination metadata.
func (s *Service) ListPublished(ctx context.Context, page, perPage int) ([]Article, shared.Pagination, error) {
	return s.repo.ListPublished(ctx, page, perPage)
}

// UpdateArticle edits title and body.
func (s *Service) UpdateArticle(ctx context.Context, id, title, body string) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" || strings.TrimSpace(body) == "" {
		return nil, httpx.ErrValidation
	}
	return s.repo.UpdateArticle(ctx, id, title, body)
}

// DeleteArticle removes an article.
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	return s.repo.DeleteArticle(ctx, id)
}

// EntityByID implements policy.Loader for the ownership guard.
func (s *Service) EntityByID(ctx context.Context, id string) (any, error) {
	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return article, nil
}
