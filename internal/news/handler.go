package news

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vendora/vendora/internal/platform/httpx"
	"github.com/vendora/vendora/internal/policy"
)

// EntityKind is the loader registry key for articles.
const EntityKind = "article"

// Policies declares the authorization requirements per operation.
// Reading is public; publishing demands authentication. Edits and
// deletes go through the ownership guard instead of the table.
var Policies = policy.Table{
	"create": {RequireAuthenticated: true},
}

// Handler manages news endpoints.
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

// MountRoutes registers news routes. Deletion masks article existence:
// a missing id answers Forbidden rather than Not Found.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listArticles)
	r.With(h.guard.Require(Policies, "create")).Post("/", h.createArticle)

	r.Route("/{articleID}", func(r chi.Router) {
		r.Get("/", h.getArticle)
		r.With(h.guard.RequireOwner(h.loaders, EntityKind, "articleID")).Put("/", h.updateArticle)
		r.With(h.guard.RequireOwner(h.loaders, EntityKind, "articleID", policy.AllowMissingEntity())).Delete("/", h.deleteArticle)
	})
}

type articleResponse struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	StoreID     string     `json:"store_id,omitempty"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type listResponse struct {
	Articles   []articleResponse `json:"articles"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

type writeArticleRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Body    string `json:"body" validate:"required"`
	StoreID string `json:"store_id" validate:"omitempty,uuid4"`
}

func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	articles, pagination, err := h.service.ListPublished(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listResponse{
		Articles:   make([]articleResponse, len(articles)),
		Page:       pagination.Page,
		TotalPages: pagination.TotalPages,
		Total:      pagination.Total,
	}
	for i := range articles {
		out.Articles[i] = toArticleResponse(&articles[i])
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var req writeArticleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	p := policy.PrincipalFromContext(r.Context())
	article, err := h.service.PublishArticle(r.Context(), p.ID, req.StoreID, req.Title, req.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toArticleResponse(article))
}

func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetArticle(r.Context(), chi.URLParam(r, "articleID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !article.Published() {
		// Unpublished drafts stay invisible on the public route.
		p := policy.PrincipalFromContext(r.Context())
		if !h.guard.Checker.IsOwnerOrAdmin(r.Context(), p, article) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	var req writeArticleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	article, err := h.service.UpdateArticle(r.Context(), chi.URLParam(r, "articleID"), req.Title, req.Body)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toArticleResponse(article))
}

func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteArticle(r.Context(), chi.URLParam(r, "articleID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func toArticleResponse(a *Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		AuthorID:    a.AuthorUserID,
		StoreID:     a.StoreID,
		Title:       a.Title,
		Body:        a.Body,
		PublishedAt: a.PublishedAt,
	}
}
