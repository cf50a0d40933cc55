package stores

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// RepositoryPort defines data access methods for stores.
type RepositoryPort interface {
	CreateStore(ctx context.Context, s *Store) error
	GetStore(ctx context.Context, id string) (*Store, error)
	GetStoreBySlug(ctx context.Context, slug string) (*Store, error)
	ListStores(ctx context.Context) ([]Store, error)
	UpdateStore(ctx context.Context, id, name string) (*Store, error)
	HasStoreRole(ctx context.Context, userID string, assignment policy.StoreRole) (bool, error)
	UpsertStoreRole(ctx context.Context, userID, storeID string, role policy.Role) error
	RemoveStoreRole(ctx context.Context, userID, storeID string) error
}

// DirectoryInvalidator drops a user's cached role data after an
// assignment change so the next authorization check sees the new state
// immediately instead of after the cache TTL.
type DirectoryInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

var titleCaser = cases.Title(language.English)

// Service handles store business logic.
type Service struct {
	repo        RepositoryPort
	invalidator DirectoryInvalidator
}

// NewService builds Service instance. invalidator may be nil when no
// directory cache is in front of the user directory.
func NewService(repo RepositoryPort, invalidator DirectoryInvalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// CreateStore registers a store owned by the given user. The display
// name is title-cased and the slug derived from it.
func (s *Service) CreateStore(ctx context.Context, ownerID, name string) (*Store, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, httpx.ErrValidation
	}
	store := &Store{
		ID:       uuid.NewString(),
		Slug:     Slugify(name),
		Name:     name,
		OwnerID:  ownerID,
		IsActive: true,
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	// Creation grants the owner an admin role in the same transaction.
	s.invalidate(ctx, ownerID)
	return store, nil
}

// GetStore returns one store by id.
func (s *Service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetStore(ctx, id)
}

// ListStores returns all active stores.
func (s *Service) ListStores(ctx context.Context) ([]Store, error) {
	return s.repo.ListStores(ctx)
}

// RenameStore updates the store display name.
func (s *Service) RenameStore(ctx context.Context, id, name string) (*Store, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, httpx.ErrValidation
	}
	return s.repo.UpdateStore(ctx, id, name)
}

// HasStoreRole implements policy.StoreDirectory.
func (s *Service) HasStoreRole(ctx context.Context, userID string, assignment policy.StoreRole) (bool, error) {
	return s.repo.HasStoreRole(ctx, userID, assignment)
}

// GrantRole grants or changes a store role.
func (s *Service) GrantRole(ctx context.Context, userID, storeID string, role policy.Role) error {
	if err := s.repo.UpsertStoreRole(ctx, userID, storeID, role); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// RevokeRole removes a store role.
func (s *Service) RevokeRole(ctx context.Context, userID, storeID string) error {
	if err := s.repo.RemoveStoreRole(ctx, userID, storeID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, userID)
	}
}

// EntityByID implements policy.Loader for the ownership guard.
func (s *Service) EntityByID(ctx context.Context, id string) (any, error) {
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NormalizeName trims and title-cases a store display name.
func NormalizeName(name string) string {
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// Slugify lowercases a name into a URL slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
