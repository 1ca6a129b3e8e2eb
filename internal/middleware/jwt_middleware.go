package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"gerador/internal/logger"
	"gerador/internal/services"
)

var customLog = logger.NewLogger()

const userIDKey = "user_id"

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(tokenString)
		if err == nil {
			var id uint
			if id, err = services.UserIDFromClaims(claims); err == nil {
				c.Locals(userIDKey, id)
				return c.Next()
			}
		}

		customLog.Debugf("JWT validation failed: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
			"error":   err.Error(),
		})
	}
}

// OptionalAuth resolves the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(identity services.IdentityProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if tokenString, ok := bearerToken(c); ok {
			if id := identity.ResolveIdentity(tokenString); id != nil {
				c.Locals(userIDKey, *id)
			}
		}
		return c.Next()
	}
}

// AdminRequired must run after AuthRequired. It rejects callers whose account
// is missing, inactive or not an administrator.
func AdminRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentUserID(c)
		if id == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		user, err := authService.GetUserByID(*id)
		if err != nil || !user.IsActive || !user.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Administrator privileges required",
			})
		}
		return c.Next()
	}
}

// CurrentUserID returns the authenticated caller, or nil for anonymous requests.
func CurrentUserID(c *fiber.Ctx) *uint {
	id, ok := c.Locals(userIDKey).(uint)
	if !ok {
		return nil
	}
	return &id
}
