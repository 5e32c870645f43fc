package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/faya/preorder-api/internal/domain"
	"github.com/faya/preorder-api/pkg/apperrors"
)

// RequireAuthenticated ensures a principal is attached.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewAuthRequired("principal required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewAuthRequired("principal required")
		}
		if len(allowed) > 0 && !principal.HasRole(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
