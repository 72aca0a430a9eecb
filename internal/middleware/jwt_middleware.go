package middleware

import (
	"strings"

	"gamewish/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "userId"
	LocalUsername = "username"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err), zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUsername, claims.Username)

		return c.Next()
	}
}

// CurrentUserID returns the user ID stored by AuthRequired, or "".
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// OwnerOnly rejects requests whose path parameter param names a different
// user than the authenticated one. It must run after AuthRequired.
func OwnerOnly(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Params(param) != CurrentUserID(c) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "You can only modify your own data",
			})
		}
		return c.Next()
	}
}
