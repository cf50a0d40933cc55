package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora/internal/policy"
	"github.com/vendora/vendora/internal/shared"
)

type fakePrincipals struct {
	roles map[string][]policy.StoreRole
}

func (f *fakePrincipals) Principal(ctx context.Context, userID string) (*policy.Principal, error) {
	return &policy.Principal{ID: userID, StoreRoles: f.roles[userID]}, nil
}

type stackFixture struct {
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
	router   chi.Router
}

func newStackFixture(t *testing.T) *stackFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "vendora_session", "stack-secret", time.Hour, false)
	csrf := shared.NewCSRFManager("stack-csrf")

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         slog.Default(),
		Config:         &Config{AppEnv: "test", AppRequestTimeout: 5 * time.Second},
		SessionManager: sessions,
		CSRFManager:    csrf,
		Principals:     &fakePrincipals{roles: map[string][]policy.StoreRole{"u1": {{StoreID: "s1", Role: policy.RoleAdmin}}}},
	}) {
		r.Use(mw)
	}

	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		p := policy.PrincipalFromContext(r.Context())
		out := map[string]any{"user_id": "", "roles": 0}
		if p != nil {
			out["user_id"] = p.ID
			out["roles"] = len(p.StoreRoles)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
	r.Post("/mutate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := csrf.EnsureToken(r.Context(), sess)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})

	return &stackFixture{sessions: sessions, csrf: csrf, router: r}
}

func TestStackAnonymousRequestHasNoPrincipal(t *testing.T) {
	f := newStackFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Empty(t, resp.UserID)
}

func TestStackResolvesPrincipalFromSession(t *testing.T) {
	f := newStackFixture(t)

	// first request establishes a session cookie
	first := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	firstRR := httptest.NewRecorder()
	f.router.ServeHTTP(firstRR, first)
	cookies := firstRR.Result().Cookies()
	require.NotEmpty(t, cookies)

	// log the user into the session directly through the manager
	loginReq := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		loginReq.AddCookie(c)
	}
	sess, err := f.sessions.Load(context.Background(), loginReq)
	require.NoError(t, err)
	sess.SetUser("u1")
	require.NoError(t, f.sessions.Commit(context.Background(), httptest.NewRecorder(), loginReq, sess))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	var resp struct {
		UserID string `json:"user_id"`
		Roles  int    `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "u1", resp.UserID)
	require.Equal(t, 1, resp.Roles)
}

func TestStackCSRFEnforcement(t *testing.T) {
	f := newStackFixture(t)

	// mutating request without a token is rejected
	req := httptest.NewRequest(http.MethodPost, "/mutate", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	// fetch a token, then replay it on the mutating request
	tokenReq := httptest.NewRequest(http.MethodGet, "/csrf", nil)
	tokenRR := httptest.NewRecorder()
	f.router.ServeHTTP(tokenRR, tokenReq)
	require.Equal(t, http.StatusOK, tokenRR.Code)
	cookies := tokenRR.Result().Cookies()
	var tokenResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(tokenRR.Body.Bytes(), &tokenResp))

	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("X-CSRF-Token", tokenResp.Token)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestStackSecurityHeaders(t *testing.T) {
	f := newStackFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}
