package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

// RequireAnyRole gates a route to principals holding at least one of the
// given roles. Per-ticket eligibility stays in the workflow service; this is
// only for surface-wide staff routes such as stats.
func RequireAnyRole(roles ...domain.RoleID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Member == nil || !principal.Member.HasAnyRole(roles) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
