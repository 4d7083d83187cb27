package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

// RequireAgent rejects requests without an authenticated agent.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
