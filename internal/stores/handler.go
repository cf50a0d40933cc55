package stores

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// EntityKind is the loader registry key for stores.
const EntityKind = "store"

// Policies declares the authorization requirements per operation. Role
// management on a store is restricted to its admins; record updates go
// through the ownership guard instead.
var Policies = policy.Table{
	"create":      {RequireAuthenticated: true},
	"grant_role":  {RequireAuthenticated: true, StoreRoles: []policy.Role{policy.RoleAdmin}},
	"revoke_role": {RequireAuthenticated: true, StoreRoles: []policy.Role{policy.RoleAdmin}},
}

// Handler manages store endpoints.
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

// MountRoutes registers store routes. Additional mounts, such as the
// store-scoped product catalogue, hang off the /{storeID} subtree.
func (h *Handler) MountRoutes(r chi.Router, nested ...func(chi.Router)) {
	r.Get("/", h.listStores)
	r.With(h.guard.Require(Policies, "create")).Post("/", h.createStore)

	r.Route("/{storeID}", func(r chi.Router) {
		r.Get("/", h.getStore)
		r.With(h.guard.RequireOwner(h.loaders, EntityKind, "storeID")).Put("/", h.renameStore)
		r.With(h.guard.Require(Policies, "grant_role")).Post("/roles", h.grantRole)
		r.With(h.guard.Require(Policies, "revoke_role")).Delete("/roles/{userID}", h.revokeRole)
		for _, mount := range nested {
			mount(r)
		}
	})
}

type storeResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type createStoreRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type renameStoreRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type grantRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=guest moderator admin"`
}

func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.ListStores(r.Context())
	if err != nil {
		h.logger.Error("list stores", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]storeResponse, len(all))
	for i, s := range all {
		out[i] = toResponse(&s)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p := policy.PrincipalFromContext(r.Context())
	store, err := h.service.CreateStore(r.Context(), p.ID, req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(store))
}

func (h *Handler) getStore(w http.ResponseWriter, r *http.Request) {
	store, err := h.service.GetStore(r.Context(), chi.URLParam(r, "storeID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(store))
}

func (h *Handler) renameStore(w http.ResponseWriter, r *http.Request) {
	var req renameStoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	store, err := h.service.RenameStore(r.Context(), chi.URLParam(r, "storeID"), req.Name)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(store))
}

func (h *Handler) grantRole(w http.ResponseWriter, r *http.Request) {
	var req grantRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	storeID := chi.URLParam(r, "storeID")
	if err := h.service.GrantRole(r.Context(), req.UserID, storeID, policy.Role(req.Role)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) revokeRole(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "storeID")
	userID := chi.URLParam(r, "userID")
	if err := h.service.RevokeRole(r.Context(), userID, storeID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func toResponse(s *Store) storeResponse {
	return storeResponse{
		ID:        s.ID,
		Slug:      s.Slug,
		Name:      s.Name,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
	}
}
