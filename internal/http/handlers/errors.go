package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "equiptrack/internal/log"
)

// ErrorHandler logs unexpected errors and shows a friendly page without
// leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		switch code {
		case fiber.StatusNotFound:
			msg = "Page not found"
		case fiber.StatusMethodNotAllowed:
			msg = "Method not allowed"
		case fiber.StatusRequestEntityTooLarge:
			msg = "Request too large"
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.error", map[string]any{"code": code, "error": err.Error()})
	}
	if rerr := page(c, code, msg); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
