package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"equiptrack/internal/log"
	"equiptrack/internal/services"
	"equiptrack/internal/validate"
)

type AuthHandler struct {
	*View
	Auth         *services.AuthService
	CookieSecure bool
	SessionTTL   time.Duration
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   h.CookieSecure,
			Expires:  time.Now().Add(h.SessionTTL),
		})
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	if c.Locals("user") != nil {
		return c.Redirect("/")
	}
	return h.render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, email, reason, msg string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	c.Status(fiber.StatusUnauthorized)
	return h.render(c, "login", fiber.Map{"Err": msg, "Email": email})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok || pass == "" || len(pass) > 72 {
		return h.loginFailed(c, email, "bad_format", "Invalid email or password")
	}

	// a fresh session id on every login
	c.Request().Header.DelCookie("sid")
	sid := h.ensureSID(c)

	_, err := h.Auth.Login(c.UserContext(), sid, email, pass)
	switch {
	case errors.Is(err, services.ErrInactive):
		return h.loginFailed(c, email, "inactive", "This account is deactivated")
	case errors.Is(err, services.ErrBadCreds):
		return h.loginFailed(c, email, "bad_creds", "Invalid email or password")
	case err != nil:
		return err
	}

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		_ = h.Auth.Logout(c.UserContext(), sid)
	}
	// Expire cookie
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.CookieSecure,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/login")
}
