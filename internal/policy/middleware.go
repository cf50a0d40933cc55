package policy

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vendora/vendora/internal/platform/httpx"
)

// Denial describes a rejected authorization attempt for auditing.
type Denial struct {
	UserID    string `json:"user_id"`
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Reason    string `json:"reason"`
}

// DenialSink receives denials for asynchronous auditing. Implementations
// must not block the request.
type DenialSink interface {
	Denied(denial Denial)
}

// DecisionObserver records allow/deny outcomes per operation.
type DecisionObserver interface {
	AuthzDecision(operation string, allowed bool)
}

// Guard enforces policy declarations in front of HTTP handlers.
type Guard struct {
	Checker  *Checker
	Logger   *slog.Logger
	Denials  DenialSink
	Observer DecisionObserver
}

// Require enforces the table entry for the named operation. Operations
// without an entry are unrestricted.
func (g Guard) Require(table Table, op string) func(http.Handler) http.Handler {
	return g.enforce(op, nil, table)
}

// RequireDecl enforces an explicit declaration for the named operation,
// overriding any table entry.
func (g Guard) RequireDecl(op string, d Declaration) func(http.Handler) http.Handler {
	return g.enforce(op, &d, nil)
}

func (g Guard) enforce(op string, explicit *Declaration, table Table) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p := PrincipalFromContext(ctx)

			// Fast path: a memoized site-admin determination bypasses
			// evaluation entirely.
			if p.Authenticated() {
				if admin, known := AdminFromContext(ctx); known && admin {
					g.observe(op, true)
					next.ServeHTTP(w, r)
					return
				}
			}

			d := Resolve(explicit, table, op)
			if d == nil {
				g.observe(op, true)
				next.ServeHTTP(w, r)
				return
			}

			if g.Checker.Check(ctx, p, d, paramsFromRequest(r)) {
				g.observe(op, true)
				next.ServeHTTP(w, r)
				return
			}

			g.observe(op, false)
			if !p.Authenticated() {
				g.deny(r, p, op, "unauthenticated")
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			g.deny(r, p, op, "policy")
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}

func (g Guard) deny(r *http.Request, p *Principal, op, reason string) {
	userID := ""
	if p != nil {
		userID = p.ID
	}
	if g.Logger != nil {
		g.Logger.Warn("authorization denied",
			slog.String("operation", op),
			slog.String("user_id", userID),
			slog.String("path", r.URL.Path),
			slog.String("reason", reason))
	}
	if g.Denials != nil {
		g.Denials.Denied(Denial{
			UserID:    userID,
			Operation: op,
			Path:      r.URL.Path,
			Reason:    reason,
		})
	}
}

func (g Guard) observe(op string, allowed bool) {
	if g.Observer != nil {
		g.Observer.AuthzDecision(op, allowed)
	}
}

func paramsFromRequest(r *http.Request) Params {
	return Params{StoreID: chi.URLParam(r, "storeID")}
}
