package policy

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the acting principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the acting principal, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

type entityContextKey struct{}

// ContextWithEntity attaches the entity resolved by the ownership guard
// so handlers avoid a second lookup.
func ContextWithEntity(ctx context.Context, entity any) context.Context {
	return context.WithValue(ctx, entityContextKey{}, entity)
}

// EntityFromContext returns the entity attached by the ownership guard.
func EntityFromContext(ctx context.Context) any {
	return ctx.Value(entityContextKey{})
}
