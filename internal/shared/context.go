package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the request's session in ctx. Installed by
// the session middleware; everything downstream reads the same instance
// so writes are committed once per request.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from ctx, or nil when the
// request carried no session cookie.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// SessionUser returns the authenticated user id bound to the
// context's session, or "" for anonymous requests.
func SessionUser(ctx context.Context) string {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.User()
	}
	return ""
}
