package policy

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Checker evaluates policy declarations against the platform's role and
// ownership truth sources. Every predicate fails closed: a provider
// error is logged and treated as a deny, never re-thrown.
type Checker struct {
	admins AdminRegistry
	users  UserDirectory
	stores StoreDirectory
	logger *slog.Logger
}

// NewChecker constructs a Checker over the given providers.
func NewChecker(admins AdminRegistry, users UserDirectory, stores StoreDirectory, logger *slog.Logger) *Checker {
	return &Checker{admins: admins, users: users, stores: stores, logger: logger}
}

// Check decides whether the principal satisfies the declaration. A nil
// declaration allows. Declared clauses are conjunctive: authentication,
// site-admin and store-role requirements must each pass when present.
func (c *Checker) Check(ctx context.Context, p *Principal, d *Declaration, params Params) bool {
	if d == nil {
		return true
	}
	if d.RequireAuthenticated && !p.Authenticated() {
		return false
	}
	if d.AdminRole && !c.IsSiteAdmin(ctx, p) {
		return false
	}
	if len(d.StoreRoles) > 0 {
		if params.StoreID == "" {
			return false
		}
		if !c.HasStoreRoles(ctx, p, params.StoreID, d.StoreRoles) {
			return false
		}
	}
	return true
}

// IsSiteAdmin reports whether the principal is a platform-wide
// administrator. Both the admin registry and the user directory must
// agree; either store going stale alone must not grant access. The two
// providers are queried concurrently. A memo cell in ctx, when present,
// short-circuits repeated determinations within one request.
func (c *Checker) IsSiteAdmin(ctx context.Context, p *Principal) bool {
	if !p.Authenticated() {
		return false
	}
	if admin, known := AdminFromContext(ctx); known {
		return admin
	}

	var registered, flagged bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		registered, err = c.admins.IsValidAdmin(gctx, p.ID)
		return err
	})
	g.Go(func() error {
		var err error
		flagged, err = c.users.IsSiteAdmin(gctx, p.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		c.warn("site admin lookup", p.ID, err)
		return false
	}

	admin := registered && flagged
	storeAdminMemo(ctx, admin)
	return admin
}

// HasStoreRoles reports whether the principal holds at least one of the
// required roles for the store. Assignments embedded on the principal
// are tried first; a match is confirmed against the store directory in
// case the embedded list is stale. When the embedded list has no match
// the full assignment list is fetched from the user directory and
// scanned under the same confirmation discipline.
func (c *Checker) HasStoreRoles(ctx context.Context, p *Principal, storeID string, required []Role) bool {
	if !p.Authenticated() || storeID == "" || len(required) == 0 {
		return false
	}

	if match, ok := firstMatch(p.StoreRoles, storeID, required); ok {
		return c.confirmRole(ctx, p.ID, match)
	}

	assignments, err := c.users.StoreRoles(ctx, p.ID)
	if err != nil {
		c.warn("store roles fetch", p.ID, err)
		return false
	}
	if match, ok := firstMatch(assignments, storeID, required); ok {
		return c.confirmRole(ctx, p.ID, match)
	}
	return false
}

// IsEntityOwner reports whether the principal owns the entity through a
// user or author reference. It never consults a provider.
func (c *Checker) IsEntityOwner(p *Principal, entity any) bool {
	if !p.Authenticated() || entity == nil {
		return false
	}
	if owned, ok := entity.(UserOwned); ok && owned.OwnerUserID() == p.ID {
		return true
	}
	if authored, ok := entity.(Authored); ok && authored.AuthorID() == p.ID {
		return true
	}
	return false
}

// IsStoreAdminForEntity reports whether the principal administers the
// store that owns the entity. Site admins pass unconditionally.
func (c *Checker) IsStoreAdminForEntity(ctx context.Context, p *Principal, entity any) bool {
	if !p.Authenticated() {
		return false
	}
	if c.IsSiteAdmin(ctx, p) {
		return true
	}
	owned, ok := entity.(StoreOwned)
	if !ok || owned.OwningStoreID() == "" {
		return false
	}
	return c.HasStoreRoles(ctx, p, owned.OwningStoreID(), []Role{RoleAdmin})
}

// IsOwnerOrAdmin is the composite resource predicate: site admin, then
// direct owner, then admin of the owning store, with short-circuits in
// that order.
func (c *Checker) IsOwnerOrAdmin(ctx context.Context, p *Principal, entity any) bool {
	if !p.Authenticated() {
		return false
	}
	if c.IsSiteAdmin(ctx, p) {
		return true
	}
	if c.IsEntityOwner(p, entity) {
		return true
	}
	return c.IsStoreAdminForEntity(ctx, p, entity)
}

func (c *Checker) confirmRole(ctx context.Context, userID string, assignment StoreRole) bool {
	ok, err := c.stores.HasStoreRole(ctx, userID, assignment)
	if err != nil {
		c.warn("store role confirm", userID, err)
		return false
	}
	return ok
}

func (c *Checker) warn(msg, userID string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, slog.String("user_id", userID), slog.Any("error", err))
}

func firstMatch(assignments []StoreRole, storeID string, required []Role) (StoreRole, bool) {
	for _, a := range assignments {
		if a.StoreID != storeID {
			continue
		}
		for _, r := range required {
			if a.Role == r {
				return a, true
			}
		}
	}
	return StoreRole{}, false
}
