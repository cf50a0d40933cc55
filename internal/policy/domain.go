package policy

// Role is a named permission level scoped to one store.
type Role string

// Store roles ordered from least to most privileged.
const (
	RoleGuest     Role = "guest"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// StoreRole assigns a role to a principal for a single store.
type StoreRole struct {
	StoreID string
	Role    Role
}

// Principal describes the authenticated actor for one request. The
// authentication layer constructs it; the checker never mutates it.
// StoreRoles may carry the assignments known at login time and can be
// stale relative to the store directory.
type Principal struct {
	ID         string
	StoreRoles []StoreRole
}

// Authenticated reports whether the principal carries a usable identity.
func (p *Principal) Authenticated() bool {
	return p != nil && p.ID != ""
}

// Declaration states what one operation requires for access. The zero
// value declares nothing and always allows.
type Declaration struct {
	RequireAuthenticated bool
	AdminRole            bool
	StoreRoles           []Role
}

// Table maps operation names to their declarations. Handlers build one
// table per resource at registration time.
type Table map[string]Declaration

// Params carries the route parameters relevant to policy evaluation.
type Params struct {
	StoreID string
}

// Resolve picks the declaration for an operation: an explicit declaration
// wins over the table entry; a nil result means no restriction.
func Resolve(explicit *Declaration, table Table, op string) *Declaration {
	if explicit != nil {
		return explicit
	}
	if d, ok := table[op]; ok {
		return &d
	}
	return nil
}

// UserOwned is implemented by entities that reference an owning user.
type UserOwned interface {
	OwnerUserID() string
}

// Authored is implemented by entities that reference an author.
type Authored interface {
	AuthorID() string
}

// StoreOwned is implemented by entities that belong to a store.
type StoreOwned interface {
	OwningStoreID() string
}
