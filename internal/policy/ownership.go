package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
)

// ErrLoaderNotRegistered indicates a wiring defect: a route was guarded
// for a resource kind no loader was registered for. It is raised at
// route construction, never converted into a request-time deny.
var ErrLoaderNotRegistered = errors.New("policy: entity loader not registered")

// Loader fetches one entity by id for ownership checks. A missing
// entity is reported as an error wrapping httpx.ErrNotFound.
type Loader interface {
	EntityByID(ctx context.Context, id string) (any, error)
}

// LoaderRegistry maps resource kinds to their entity loaders. All
// registrations happen during startup wiring; lookups afterwards are
// read-only.
type LoaderRegistry struct {
	loaders map[string]Loader
}

// NewLoaderRegistry returns an empty registry.
func NewLoaderRegistry() *LoaderRegistry {
	return &LoaderRegistry{loaders: make(map[string]Loader)}
}

// Register binds a loader to a resource kind.
func (r *LoaderRegistry) Register(kind string, l Loader) {
	r.loaders[kind] = l
}

// Loader returns the loader for a kind or ErrLoaderNotRegistered.
func (r *LoaderRegistry) Loader(kind string) (Loader, error) {
	l, ok := r.loaders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLoaderNotRegistered, kind)
	}
	return l, nil
}

// OwnerOption adjusts ownership guard behaviour.
type OwnerOption func(*ownerGuard)

// AllowMissingEntity makes the guard answer Forbidden instead of Not
// Found for absent entities, masking resource existence on sensitive
// routes.
func AllowMissingEntity() OwnerOption {
	return func(g *ownerGuard) { g.allowMissing = true }
}

type ownerGuard struct {
	allowMissing bool
}

// RequireOwner guards a route with the owner-or-admin predicate. The
// target entity is resolved through the registry by the id found in the
// named URL parameter, attached to the request context on success. A
// kind without a registered loader panics here, at construction.
func (g Guard) RequireOwner(registry *LoaderRegistry, kind, idParam string, opts ...OwnerOption) func(http.Handler) http.Handler {
	loader, err := registry.Loader(kind)
	if err != nil {
		panic(err)
	}
	cfg := ownerGuard{}
	for _, opt := range opts {
		opt(&cfg)
	}

	op := kind + ".owner"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p := PrincipalFromContext(ctx)
			if !p.Authenticated() {
				g.observe(op, false)
				g.deny(r, p, op, "unauthenticated")
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}

			entity, err := loader.EntityByID(ctx, chi.URLParam(r, idParam))
			if err != nil && !errors.Is(err, httpx.ErrNotFound) {
				// Loader failure counts as a provider failure: deny.
				if g.Logger != nil {
					g.Logger.Warn("entity load failed", slog.String("kind", kind), slog.Any("error", err))
				}
				g.observe(op, false)
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			if err != nil || entity == nil {
				g.observe(op, false)
				g.deny(r, p, op, "entity missing")
				if cfg.allowMissing {
					httpx.RespondError(w, httpx.ErrForbidden)
					return
				}
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}

			if !g.Checker.IsOwnerOrAdmin(ctx, p, entity) {
				g.observe(op, false)
				g.deny(r, p, op, "ownership")
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}

			g.observe(op, true)
			next.ServeHTTP(w, r.WithContext(ContextWithEntity(ctx, entity)))
		})
	}
}
