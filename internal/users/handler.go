package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// Policies declares the authorization requirements per operation.
// Account administration is restricted to site admins.
var Policies = policy.Table{
	"list": {RequireAuthenticated: true, AdminRole: true},
	"get":  {RequireAuthenticated: true, AdminRole: true},
}

// Handler manages user administration endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   policy.Guard
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard policy.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require(Policies, "list")).Get("/", h.listUsers)
	r.With(h.guard.Require(Policies, "get")).Get("/{userID}", h.getUser)
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsSiteAdmin bool      `json:"is_site_admin"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toResponse(u)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*user))
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsSiteAdmin: u.IsSiteAdmin,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}
