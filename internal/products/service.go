package products

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/vendora/vendora/internal/platform/httpx"
)

// RepositoryPort defines data access methods for products.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListByStore(ctx context.Context, storeID string) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Service handles product business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Listing captures the fields a store sets on a product.
type Listing struct {
	Name        string
	Description string
	PriceCents  int64
	Currency    string
}

// CreateProduct lists a new product on a store.
func (s *Service) CreateProduct(ctx context.Context, storeID string, in Listing) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.PriceCents < 0 {
		return nil, httpx.ErrValidation
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	product := &Product{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    in.Currency,
		IsActive:    true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// ListByStore returns a store's active products.
func (s *Service) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// UpdateProduct edits an existing listing.
func (s *Service) UpdateProduct(ctx context.Context, id string, in Listing, active bool) (*Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.PriceCents < 0 {
		return nil, httpx.ErrValidation
	}
	product.Name = in.Name
	product.Description = in.Description
	product.PriceCents = in.PriceCents
	if in.Currency != "" {
		product.Currency = in.Currency
	}
	product.IsActive = active
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a listing.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.DeleteProduct(ctx, id)
}

// EntityByID implements policy.Loader for the ownership guard.
func (s *Service) EntityByID(ctx context.Context, id string) (any, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}
