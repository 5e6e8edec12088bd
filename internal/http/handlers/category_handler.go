package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "equiptrack/internal/log"
	"equiptrack/internal/services"
)

type CategoryHandler struct {
	*View
	Categories *services.CategoryService
}

// GET /category
func (h *CategoryHandler) Index(c *fiber.Ctx) error {
	archived := c.Query("archived") == "1"
	cats, err := h.Categories.List(c.UserContext(), archived)
	if err != nil {
		return err
	}
	return h.render(c, "category/index", fiber.Map{"Categories": cats, "Archived": archived})
}

// POST /category
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "/category")
	}
	cat, err := h.Categories.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err, "/category")
	}
	applog.Audit(c, "category.create", map[string]any{"category_id": cat.ID})
	return h.done(c, "Category created.", "/category")
}

// POST /category/:id/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Categories.SoftDelete(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/category")
	}
	return h.archived(c, changed, "Category archived.", "This category is already archived.", "/category")
}

// POST /category/:id/restore
func (h *CategoryHandler) Restore(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Categories.Restore(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/category?archived=1")
	}
	return h.archived(c, changed, "Category restored.", "This category is not archived.", "/category")
}
