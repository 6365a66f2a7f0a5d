package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/omnilaze/internal/errs"
	"github.com/example/omnilaze/internal/utils"
)

const userContextKey = "currentUserID"

// OptionalAuth validates a bearer token when one is sent and loads the
// authenticated user ID into context. Requests without an Authorization
// header pass through anonymously.
func OptionalAuth(tokens *utils.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, err := tokens.Parse(strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(userContextKey, userID)
		return c.Next()
	}
}

// GetCurrentUserID extracts the authenticated user ID from context.
func GetCurrentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return uuid.Nil, false
	}

	if id, ok := value.(uuid.UUID); ok {
		return id, true
	}

	return uuid.Nil, false
}

// RequireOwner fails with errs.ErrForbidden when the request is
// authenticated as someone other than owner.
func RequireOwner(c *fiber.Ctx, owner uuid.UUID) error {
	current, ok := GetCurrentUserID(c)
	if !ok || current == owner {
		return nil
	}
	return fmt.Errorf("%w: token belongs to another user", errs.ErrForbidden)
}
