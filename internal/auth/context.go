package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type identityKey struct{}

// WithIdentity stores the decoded identity in the context for downstream handlers.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves an identity previously stored by the gate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// CurrentIdentity is the fiber shorthand for IdentityFromContext.
func CurrentIdentity(c *fiber.Ctx) (Identity, bool) {
	return IdentityFromContext(c.UserContext())
}
