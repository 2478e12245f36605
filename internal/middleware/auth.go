package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tribuna/internal/apperr"
	"github.com/example/tribuna/internal/models"
	"github.com/example/tribuna/internal/services"
)

const userContextKey = "currentUser"

// AuthMiddleware validates bearer tokens and loads the authenticated user
// into the request context. Tokens issued before the user's current key
// version are rejected.
func AuthMiddleware(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return apperr.Unauthorized("missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Unauthorized("invalid authorization header")
		}

		user, err := tokens.Authenticate(parts[1])
		if err != nil {
			return err
		}

		c.Locals(userContextKey, user)
		return c.Next()
	}
}

// RequireStaff rejects requests from non-staff users. Must run after
// AuthMiddleware.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetCurrentUser(c)
		if !ok {
			return apperr.Unauthorized("unauthorized")
		}
		if !user.IsStaff && !user.IsAdmin {
			return apperr.Forbidden("staff access required")
		}
		return c.Next()
	}
}

// GetCurrentUser extracts the authenticated user from context.
func GetCurrentUser(c *fiber.Ctx) (*models.User, bool) {
	value := c.Locals(userContextKey)
	if value == nil {
		return nil, false
	}

	if user, ok := value.(*models.User); ok {
		return user, true
	}
	return nil, false
}
