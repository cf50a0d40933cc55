package policy

import "context"

// AdminRegistry answers whether a user id belongs to an active
// platform administrator.
type AdminRegistry interface {
	IsValidAdmin(ctx context.Context, userID string) (bool, error)
}

// UserDirectory exposes the user-account view of authorization state.
type UserDirectory interface {
	// IsSiteAdmin reports whether the account is flagged site-admin.
	IsSiteAdmin(ctx context.Context, userID string) (bool, error)
	// StoreRoles returns every store role assignment held by the user.
	StoreRoles(ctx context.Context, userID string) ([]StoreRole, error)
}

// StoreDirectory confirms that a specific role assignment is currently
// valid for its store.
type StoreDirectory interface {
	HasStoreRole(ctx context.Context, userID string, assignment StoreRole) (bool, error)
}
