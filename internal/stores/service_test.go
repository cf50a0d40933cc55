package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

type fakeStoreRepo struct {
	created *Store
	stores  map[string]*Store
	roles   map[string]policy.Role
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: map[string]*Store{}, roles: map[string]policy.Role{}}
}

func roleKey(userID, storeID string) string { return userID + "/" + storeID }

func (f *fakeStoreRepo) CreateStore(ctx context.Context, s *Store) error {
	f.created = s
	f.stores[s.ID] = s
	f.roles[roleKey(s.OwnerID, s.ID)] = policy.RoleAdmin
	return nil
}

func (f *fakeStoreRepo) GetStore(ctx context.Context, id string) (*Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return s, nil
}

func (f *fakeStoreRepo) GetStoreBySlug(ctx context.Context, slug string) (*Store, error) {
	for _, s := range f.stores {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (f *fakeStoreRepo) ListStores(ctx context.Context) ([]Store, error) {
	out := make([]Store, 0, len(f.stores))
	for _, s := range f.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStoreRepo) UpdateStore(ctx context.Context, id, name string) (*Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	s.Name = name
	return s, nil
}

func (f *fakeStoreRepo) HasStoreRole(ctx context.Context, userID string, assignment policy.StoreRole) (bool, error) {
	return f.roles[roleKey(userID, assignment.StoreID)] == assignment.Role, nil
}

func (f *fakeStoreRepo) UpsertStoreRole(ctx context.Context, userID, storeID string, role policy.Role) error {
	f.roles[roleKey(userID, storeID)] = role
	return nil
}

func (f *fakeStoreRepo) RemoveStoreRole(ctx context.Context, userID, storeID string) error {
	delete(f.roles, roleKey(userID, storeID))
	return nil
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "Acme Surplus Outlet", NormalizeName("  acme   surplus outlet "))
	require.Equal(t, "", NormalizeName("   "))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Surplus Outlet": "acme-surplus-outlet",
		"Bob's Bits & Bobs":   "bob-s-bits-bobs",
		"  spaced  out  ":     "spaced-out",
		"123 Go":              "123-go",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestCreateStore(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo, nil)

	store, err := svc.CreateStore(context.Background(), "u1", "  acme  surplus ")
	require.NoError(t, err)
	require.NotEmpty(t, store.ID)
	require.Equal(t, "Acme Surplus", store.Name)
	require.Equal(t, "acme-surplus", store.Slug)
	require.Equal(t, "u1", store.OwnerID)
	require.True(t, store.IsActive)

	// creating a store makes the owner its admin
	ok, err := svc.HasStoreRole(context.Background(), "u1", policy.StoreRole{StoreID: store.ID, Role: policy.RoleAdmin})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateStoreRejectsBlankName(t *testing.T) {
	svc := NewService(newFakeStoreRepo(), nil)
	_, err := svc.CreateStore(context.Background(), "u1", "   ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRenameStore(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo, nil)

	store, err := svc.CreateStore(context.Background(), "u1", "old name")
	require.NoError(t, err)

	renamed, err := svc.RenameStore(context.Background(), store.ID, "new name")
	require.NoError(t, err)
	require.Equal(t, "New Name", renamed.Name)

	_, err = svc.RenameStore(context.Background(), store.ID, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGrantAndRevokeRole(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo, nil)

	store, err := svc.CreateStore(context.Background(), "u1", "roleplay")
	require.NoError(t, err)

	require.NoError(t, svc.GrantRole(context.Background(), "u2", store.ID, policy.RoleModerator))
	ok, err := svc.HasStoreRole(context.Background(), "u2", policy.StoreRole{StoreID: store.ID, Role: policy.RoleModerator})
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.RevokeRole(context.Background(), "u2", store.ID))
	ok, err = svc.HasStoreRole(context.Background(), "u2", policy.StoreRole{StoreID: store.ID, Role: policy.RoleModerator})
	require.NoError(t, err)
	require.False(t, ok)
}

type fakeInvalidator struct {
	users []string
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, userID string) {
	f.users = append(f.users, userID)
}

func TestRoleMutationsInvalidateDirectory(t *testing.T) {
	repo := newFakeStoreRepo()
	inv := &fakeInvalidator{}
	svc := NewService(repo, inv)

	store, err := svc.CreateStore(context.Background(), "u1", "cached roles")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, inv.users)

	require.NoError(t, svc.GrantRole(context.Background(), "u2", store.ID, policy.RoleModerator))
	require.NoError(t, svc.RevokeRole(context.Background(), "u2", store.ID))
	require.Equal(t, []string{"u1", "u2", "u2"}, inv.users)
}

func TestStoreOwnershipInterfaces(t *testing.T) {
	store := &Store{ID: "s1", OwnerID: "u1"}
	require.Equal(t, "u1", store.OwnerUserID())
	require.Equal(t, "s1", store.OwningStoreID())
}

func TestEntityByID(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo, nil)

	store, err := svc.CreateStore(context.Background(), "u1", "loaded")
	require.NoError(t, err)

	entity, err := svc.EntityByID(context.Background(), store.ID)
	require.NoError(t, err)
	require.Equal(t, store, entity)

	_, err = svc.EntityByID(context.Background(), "missing")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
