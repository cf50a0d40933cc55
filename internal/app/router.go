package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vendora/vendora/internal/auth"
	"github.com/vendora/vendora/internal/news"
	"github.com/vendora/vendora/internal/observability"
	"github.com/vendora/vendora/internal/products"
	"github.com/vendora/vendora/internal/shared"
	"github.com/vendora/vendora/internal/stores"
	"github.com/vendora/vendora/internal/users"
	"github.com/vendora/vendora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Principals     PrincipalSource

	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	StoresHandler   *stores.Handler
	ProductsHandler *products.Handler
	NewsHandler     *news.Handler
	JobHandler      *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Vendora defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Principals:     params.Principals,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/admin/users", params.UsersHandler.MountRoutes)
	}
	r.Route("/stores", func(r chi.Router) {
		params.StoresHandler.MountRoutes(r, func(r chi.Router) {
			r.Route("/products", params.ProductsHandler.MountStoreRoutes)
		})
	})
	r.Route("/products", params.ProductsHandler.MountRoutes)
	r.Route("/news", params.NewsHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
