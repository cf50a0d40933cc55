package users

import (
	"context"

	"github.com/vendora/vendora/internal/policy"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	IsSiteAdmin(ctx context.Context, userID string) (bool, error)
	StoreRoles(ctx context.Context, userID string) ([]policy.StoreRole, error)
}

// Service handles user business logic and serves as the user directory
// consulted by the policy checker.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// IsSiteAdmin implements policy.UserDirectory.
func (s *Service) IsSiteAdmin(ctx context.Context, userID string) (bool, error) {
	return s.repo.IsSiteAdmin(ctx, userID)
}

// StoreRoles implements policy.UserDirectory.
func (s *Service) StoreRoles(ctx context.Context, userID string) ([]policy.StoreRole, error) {
	return s.repo.StoreRoles(ctx, userID)
}

// Principal assembles the acting principal for an authenticated user,
// embedding the role assignments known at load time.
func (s *Service) Principal(ctx context.Context, userID string) (*policy.Principal, error) {
	roles, err := s.repo.StoreRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &policy.Principal{ID: userID, StoreRoles: roles}, nil
}
