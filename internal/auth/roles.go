package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/status-page/internal/domain"
)

const principalKey = "auth_principal"

// RequirePrincipal resolves the identity forwarded by the gate into a
// principal. Unresolvable callers are handled like unauthenticated ones; a
// principal whose user row is gone also loses its cookie.
func RequirePrincipal(resolver *IdentityResolver, cookies *SessionCookies, logger *zap.Logger) fiber.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return rejectUnauthenticated(c)
		}

		principal, err := resolver.Resolve(c.UserContext(), identity)
		if err != nil {
			switch {
			case errors.Is(err, ErrPrincipalNotFound):
				cookies.Clear(c)
			case errors.Is(err, ErrStorageUnavailable):
				logger.Warn("identity store unavailable; treating caller as signed out",
					zap.String("subject_id", identity.SubjectID), zap.Error(err))
			}
			return rejectUnauthenticated(c)
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFromContext retrieves the principal stored by RequirePrincipal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// RequirePersisted ensures the caller has a real user row behind it.
func RequirePersisted() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.Kind != domain.PrincipalPersisted {
			return fiber.NewError(http.StatusForbidden, "registered account required")
		}
		return c.Next()
	}
}

// RequireOrganization ensures the caller acts on behalf of a tenant.
func RequireOrganization() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.OrganizationID == "" {
			return fiber.NewError(http.StatusForbidden, "organization membership required")
		}
		return c.Next()
	}
}
