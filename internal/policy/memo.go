package policy

import "context"

// adminMemo caches the site-admin determination for one request so
// repeated checks skip the provider round trips. The cell lives in the
// request context instead of a mutable flag on the Principal; the
// principal middleware installs one per request.
type adminMemo struct {
	known bool
	admin bool
}

type adminMemoKey struct{}

// ContextWithAdminMemo installs a fresh site-admin memo cell.
func ContextWithAdminMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminMemoKey{}, &adminMemo{})
}

// ContextWithKnownAdmin installs a memo cell pre-resolved to the given
// value. The authentication layer uses it when the determination is
// already known at principal construction time.
func ContextWithKnownAdmin(ctx context.Context, admin bool) context.Context {
	return context.WithValue(ctx, adminMemoKey{}, &adminMemo{known: true, admin: admin})
}

// AdminFromContext reports the memoized determination, if any.
func AdminFromContext(ctx context.Context) (admin, known bool) {
	memo, _ := ctx.Value(adminMemoKey{}).(*adminMemo)
	if memo == nil || !memo.known {
		return false, false
	}
	return memo.admin, true
}

func storeAdminMemo(ctx context.Context, admin bool) {
	memo, _ := ctx.Value(adminMemoKey{}).(*adminMemo)
	if memo == nil {
		return
	}
	memo.known = true
	memo.admin = admin
}
