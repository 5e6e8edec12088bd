package handlers

import (
	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/services"
)

type DashboardHandler struct {
	*View
	Dashboard *services.DashboardService
}

// GET /
func (h *DashboardHandler) Home(c *fiber.Ctx) error {
	n, err := h.Dashboard.Counters(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, "dashboard", fiber.Map{"N": n, "LowStock": h.Dashboard.LowStock})
}
