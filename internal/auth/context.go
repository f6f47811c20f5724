package auth

import (
	"context"

	"example.com/agenda/internal/domain"
)

type contextKey struct{}

var identityKey = contextKey{}

// WithIdentity returns a child context carrying the resolved identity.
func WithIdentity(ctx context.Context, who domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, who)
}

// IdentityFromContext extracts the identity placed by the middleware.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	who, ok := ctx.Value(identityKey).(domain.Identity)
	return who, ok
}
