package handlers

import (
	"github.com/gofiber/fiber/v2"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/services"
)

// RequireUser enforces a logged-in session.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

// RequireSeller enforces a logged-in seller account.
func RequireSeller(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil || !u.IsSeller() {
			applog.Security(c, "access.denied.seller", map[string]any{"sid": sid})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "seller account required"})
		}
		c.Locals("user", u)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}
