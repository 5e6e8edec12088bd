package handlers

import (
	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/services"
)

// LoadUser attaches the session's user, if any, to the request.
func LoadUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
				c.Locals("user_id", u.ID)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if u, ok := c.Locals("user").(*domain.User); !ok || u == nil {
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, _ := c.Locals("user").(*domain.User)
		if u == nil {
			return c.Redirect("/login")
		}
		if !u.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return page(c, fiber.StatusForbidden, "Access denied")
		}
		return c.Next()
	}
}
