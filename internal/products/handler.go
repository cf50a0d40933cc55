package products

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// EntityKind is the loader registry key for products.
const EntityKind = "product"

// Policies declares the authorization requirements per operation under
// a store route. Creating listings takes a moderator; direct edits on
// /products/{id} go through the ownership guard, which resolves to the
// owning store's admin role.
var Policies = policy.Table{
	"create": {RequireAuthenticated: true, StoreRoles: []policy.Role{policy.RoleAdmin, policy.RoleModerator}},
}

// Handler manages product endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    policy.Guard
	loaders  *policy.LoaderRegistry
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Guard, loaders *policy.LoaderRegistry) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		guard:    guard,
		loaders:  loaders,
		validate: validator.New(),
	}
}

// MountStoreRoutes registers the store-scoped product routes; mount
// under /stores/{storeID}.
func (h *Handler) MountStoreRoutes(r chi.Router) {
	r.Get("/", h.listByStore)
	r.With(h.guard.Require(Policies, "create")).Post("/", h.createProduct)
}

// MountRoutes registers the direct product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", h.getProduct)
		r.With(h.guard.RequireOwner(h.loaders, EntityKind, "productID")).Put("/", h.updateProduct)
		r.With(h.guard.RequireOwner(h.loaders, EntityKind, "productID")).Delete("/", h.deleteProduct)
	})
}

type productResponse struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type writeProductRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=4000"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	Currency    string `json:"currency" validate:"omitempty,iso4217"`
	IsActive    *bool  `json:"is_active"`
}

func (h *Handler) listByStore(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.ListByStore(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]productResponse, len(all))
	for i := range all {
		out[i] = toProductResponse(&all[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req writeProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	product, err := h.service.CreateProduct(r.Context(), chi.URLParam(r, "storeID"), Listing{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req writeProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "productID"), Listing{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
	}, active)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "productID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func toProductResponse(p *Product) productResponse {
	return productResponse{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}
