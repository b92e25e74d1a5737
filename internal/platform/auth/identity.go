package auth

import (
	"context"
	"strings"
)

// Identity captures the authenticated principal details extracted from a
// session token. Email is the canonical user key across the API.
type Identity struct {
	Email string
	Name  string
}

// NormalizedEmail returns the lower-cased trimmed email used for scoping
// carts, orders, and profiles.
func (i *Identity) NormalizedEmail() string {
	if i == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(i.Email))
}

type contextKey string

const identityContextKey contextKey = "github.com/biocart/api/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
