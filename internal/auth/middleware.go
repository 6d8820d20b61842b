package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-workflow/internal/domain"
	"github.com/spec-kit/ticket-workflow/internal/identity"
	apperrors "github.com/spec-kit/ticket-workflow/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Member is set when the
// directory knows the account; plain requesters may be absent from it.
type Principal struct {
	ID     domain.UserID
	Name   string
	Member *identity.Member
}

// AuthMiddleware validates bearer tokens and resolves principals against the
// identity directory.
type AuthMiddleware struct {
	tokens    *TokenManager
	directory identity.Directory
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, directory identity.Directory) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, directory: directory}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{ID: domain.UserID(claims.SubjectID), Name: claims.Name}
	if member, ok := m.directory.Resolve(principal.ID); ok {
		if member.Bot {
			return apperrors.NewForbidden("bot accounts cannot call the ticket api")
		}
		principal.Member = &member
	}

	c.Locals(principalKey, principal)
	return c.Next()
}

// PrincipalFromContext extracts the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}
