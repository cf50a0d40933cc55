package products

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

type fakeProductRepo struct {
	products map[string]*Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*Product{}}
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, p *Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	// Copy so edits only land through UpdateProduct, as with a real row.
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) ListByStore(ctx context.Context, storeID string) ([]Product, error) {
	var out []Product
	for _, p := range f.products {
		if p.StoreID == storeID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, p *Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return httpx.ErrNotFound
	}
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

type stubDirectory struct {
	admins map[string]bool
	roles  map[string][]policy.StoreRole
}

func (d *stubDirectory) IsValidAdmin(ctx context.Context, userID string) (bool, error) {
	return d.admins[userID], nil
}

func (d *stubDirectory) IsSiteAdmin(ctx context.Context, userID string) (bool, error) {
	return d.admins[userID], nil
}

func (d *stubDirectory) StoreRoles(ctx context.Context, userID string) ([]policy.StoreRole, error) {
	return d.roles[userID], nil
}

func (d *stubDirectory) HasStoreRole(ctx context.Context, userID string, assignment policy.StoreRole) (bool, error) {
	for _, a := range d.roles[userID] {
		if a == assignment {
			return true, nil
		}
	}
	return false, nil
}

type productsFixture struct {
	repo   *fakeProductRepo
	dir    *stubDirectory
	router chi.Router
}

func newProductsFixture(t *testing.T) *productsFixture {
	t.Helper()
	repo := newFakeProductRepo()
	dir := &stubDirectory{admins: map[string]bool{}, roles: map[string][]policy.StoreRole{}}

	checker := policy.NewChecker(dir, dir, dir, slog.Default())
	guard := policy.Guard{Checker: checker, Logger: slog.Default()}

	service := NewService(repo)
	loaders := policy.NewLoaderRegistry()
	loaders.Register(EntityKind, service)

	handler := NewHandler(slog.Default(), service, guard, loaders)
	router := chi.NewRouter()
	router.Route("/stores/{storeID}/products", handler.MountStoreRoutes)
	router.Route("/products", handler.MountRoutes)
	return &productsFixture{repo: repo, dir: dir, router: router}
}

func (f *productsFixture) do(method, path, body, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	ctx := policy.ContextWithAdminMemo(req.Context())
	if userID != "" {
		ctx = policy.ContextWithPrincipal(ctx, &policy.Principal{ID: userID, StoreRoles: f.dir.roles[userID]})
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func (f *productsFixture) seedProduct(id, storeID string) {
	f.repo.products[id] = &Product{ID: id, StoreID: storeID, Name: "Widget", PriceCents: 1000, Currency: "USD", IsActive: true}
}

func TestCreateProductRequiresStoreRole(t *testing.T) {
	f := newProductsFixture(t)
	body := `{"name":"Widget","price_cents":1500}`

	rr := f.do(http.MethodPost, "/stores/s1/products", body, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(http.MethodPost, "/stores/s1/products", body, "shopper")
	require.Equal(t, http.StatusForbidden, rr.Code)

	f.dir.roles["mod"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleModerator}}
	rr = f.do(http.MethodPost, "/stores/s1/products", body, "mod")
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		StoreID  string `json:"store_id"`
		Currency string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "s1", resp.StoreID)
	require.Equal(t, "USD", resp.Currency)
}

func TestCreateProductRoleScopedToStore(t *testing.T) {
	f := newProductsFixture(t)
	f.dir.roles["mod"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleModerator}}

	rr := f.do(http.MethodPost, "/stores/s2/products", `{"name":"Widget","price_cents":100}`, "mod")
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestUpdateProductRequiresStoreAdmin(t *testing.T) {
	f := newProductsFixture(t)
	f.seedProduct("p1", "s1")
	body := `{"name":"Widget v2","price_cents":2000}`

	rr := f.do(http.MethodPut, "/products/p1", body, "shopper")
	require.Equal(t, http.StatusForbidden, rr.Code)

	// a moderator can list products but not edit them
	f.dir.roles["mod"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleModerator}}
	rr = f.do(http.MethodPut, "/products/p1", body, "mod")
	require.Equal(t, http.StatusForbidden, rr.Code)

	f.dir.roles["mgr"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleAdmin}}
	rr = f.do(http.MethodPut, "/products/p1", body, "mgr")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Widget v2", f.repo.products["p1"].Name)
}

func TestUpdateProductPersistsCurrency(t *testing.T) {
	f := newProductsFixture(t)
	f.seedProduct("p1", "s1")
	f.dir.roles["mgr"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleAdmin}}

	rr := f.do(http.MethodPut, "/products/p1", `{"name":"Widget","price_cents":1000,"currency":"EUR"}`, "mgr")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "EUR", f.repo.products["p1"].Currency)

	// omitting currency keeps the stored one
	rr = f.do(http.MethodPut, "/products/p1", `{"name":"Widget","price_cents":1200}`, "mgr")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "EUR", f.repo.products["p1"].Currency)
	require.Equal(t, int64(1200), f.repo.products["p1"].PriceCents)
}

func TestDeleteProduct(t *testing.T) {
	f := newProductsFixture(t)
	f.seedProduct("p1", "s1")
	f.dir.roles["mgr"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleAdmin}}

	rr := f.do(http.MethodDelete, "/products/p1", "", "mgr")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, f.repo.products)

	rr = f.do(http.MethodDelete, "/products/p1", "", "mgr")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProductIsPublic(t *testing.T) {
	f := newProductsFixture(t)
	f.seedProduct("p1", "s1")

	rr := f.do(http.MethodGet, "/products/p1", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodGet, "/products/missing", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListByStore(t *testing.T) {
	f := newProductsFixture(t)
	f.seedProduct("p1", "s1")
	f.seedProduct("p2", "s2")

	rr := f.do(http.MethodGet, "/stores/s1/products", "", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	require.Equal(t, "p1", resp[0].ID)
}

func TestCreateProductValidation(t *testing.T) {
	f := newProductsFixture(t)
	f.dir.roles["mgr"] = []policy.StoreRole{{StoreID: "s1", Role: policy.RoleAdmin}}

	rr := f.do(http.MethodPost, "/stores/s1/products", `{"name":"x","price_cents":100}`, "mgr")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/stores/s1/products", `{"name":"Widget","price_cents":-5}`, "mgr")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/stores/s1/products", `{"name":"Widget","price_cents":100,"currency":"ZZZ"}`, "mgr")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
