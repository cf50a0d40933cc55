package policy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora/internal/platform/httpx"
)

type fakeLoader struct {
	entities map[string]any
	err      error
}

func (f *fakeLoader) EntityByID(ctx context.Context, id string) (any, error) {
	if f.err != nil {
		return nil, f.err
	}
	entity, ok := f.entities[id]
	if !ok {
		return nil, fmt.Errorf("entity %s: %w", id, httpx.ErrNotFound)
	}
	return entity, nil
}

func ownerRouter(guard Guard, registry *LoaderRegistry, opts ...OwnerOption) chi.Router {
	r := chi.NewRouter()
	r.With(guard.RequireOwner(registry, "article", "articleID", opts...)).Get("/articles/{articleID}", func(w http.ResponseWriter, r *http.Request) {
		if EntityFromContext(r.Context()) == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func getArticle(r chi.Router, id string, p *Principal) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/articles/"+id, nil)
	ctx := req.Context()
	if p != nil {
		ctx = ContextWithPrincipal(ctx, p)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req.WithContext(ctx))
	return rr
}

func TestRequireOwnerPanicsOnUnregisteredKind(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()

	require.PanicsWithError(t, "policy: entity loader not registered: article", func() {
		guard.RequireOwner(registry, "article", "articleID")
	})
}

func TestRequireOwnerUnauthenticated(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{"a1": authoredEntity{author: "u1"}}})

	rr := getArticle(ownerRouter(guard, registry), "a1", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireOwnerAllowsOwnerAndAttachesEntity(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{"a1": authoredEntity{author: "u1"}}})

	rr := getArticle(ownerRouter(guard, registry), "a1", &Principal{ID: "u1"})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireOwnerForbidsNonOwner(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	sink := &recordedDenial{}
	guard := Guard{Checker: checker, Denials: sink}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{"a1": authoredEntity{author: "u1"}}})

	rr := getArticle(ownerRouter(guard, registry), "a1", &Principal{ID: "u2"})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Len(t, sink.denials, 1)
	require.Equal(t, "article.owner", sink.denials[0].Operation)
	require.Equal(t, "ownership", sink.denials[0].Reason)
}

func TestRequireOwnerMissingEntity(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{}})

	rr := getArticle(ownerRouter(guard, registry), "missing", &Principal{ID: "u1"})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = getArticle(ownerRouter(guard, registry, AllowMissingEntity()), "missing", &Principal{ID: "u1"})
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireOwnerLoaderFailureDenies(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{err: errors.New("database down")})

	rr := getArticle(ownerRouter(guard, registry), "a1", &Principal{ID: "u1"})
	require.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireOwnerSiteAdminBypassesOwnership(t *testing.T) {
	checker := newTestChecker(&fakeAdminRegistry{valid: true}, &fakeUserDirectory{siteAdmin: true}, &fakeStoreDirectory{})
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{"a1": authoredEntity{author: "u1"}}})

	rr := getArticle(ownerRouter(guard, registry), "a1", &Principal{ID: "someone-else"})
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireOwnerStoreAdminOfOwningStore(t *testing.T) {
	stores := &fakeStoreDirectory{confirm: true}
	checker := newTestChecker(&fakeAdminRegistry{}, &fakeUserDirectory{}, stores)
	guard := Guard{Checker: checker}
	registry := NewLoaderRegistry()
	registry.Register("article", &fakeLoader{entities: map[string]any{"a1": authoredStoreEntity{author: "u1", store: "s1"}}})

	p := &Principal{ID: "u2", StoreRoles: []StoreRole{{StoreID: "s1", Role: RoleAdmin}}}
	rr := getArticle(ownerRouter(guard, registry), "a1", p)
	require.Equal(t, http.StatusOK, rr.Code)
}
