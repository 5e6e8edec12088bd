package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/services"
)

type EquipmentHandler struct {
	*View
	Equipment  *services.EquipmentService
	Categories *services.CategoryService
}

// GET /equipment
func (h *EquipmentHandler) Index(c *fiber.Ctx) error {
	f := h.listFilter(c)
	items, page, err := h.Equipment.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	cats, err := h.Categories.List(c.UserContext(), false)
	if err != nil {
		return err
	}
	return h.render(c, "equipment/index", fiber.Map{
		"Items":      items,
		"Categories": cats,
		"Filter":     f,
		"Pager":      pager(c, page),
	})
}

func (h *EquipmentHandler) form(c *fiber.Ctx, title, action string, in services.EquipmentInput, isNew bool) error {
	cats, err := h.Categories.List(c.UserContext(), false)
	if err != nil {
		return err
	}
	return h.render(c, "equipment/form", fiber.Map{
		"Title":      title,
		"Action":     action,
		"Form":       in,
		"IsNew":      isNew,
		"Categories": cats,
		"States":     domain.EquipmentStates,
	})
}

// GET /equipment/new
func (h *EquipmentHandler) New(c *fiber.Ctx) error {
	return h.form(c, "New equipment", "/equipment/new", services.EquipmentInput{State: string(domain.StateNew)}, true)
}

// POST /equipment/new
func (h *EquipmentHandler) Create(c *fiber.Ctx) error {
	var in services.EquipmentInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "/equipment/new")
	}
	e, err := h.Equipment.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err, "/equipment/new")
	}
	applog.Audit(c, "equipment.create", map[string]any{"equipment_id": e.ID, "reference": e.Reference})
	return h.done(c, "Equipment created.", fmt.Sprintf("/equipment/%d", e.ID))
}

// GET /equipment/:id
func (h *EquipmentHandler) Show(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	d, err := h.Equipment.Detail(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return err
	}
	return h.render(c, "equipment/show", fiber.Map{"D": d, "E": d.Equipment})
}

// GET /equipment/:id/edit
func (h *EquipmentHandler) Edit(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	e, err := h.Equipment.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return err
	}
	in := services.EquipmentInput{Name: e.Name, Reference: e.Reference, CategoryID: e.CategoryID, State: string(e.State), StockQuantity: e.StockQuantity}
	return h.form(c, "Edit "+e.Name, fmt.Sprintf("/equipment/%d/edit", id), in, false)
}

// POST /equipment/:id/edit
func (h *EquipmentHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	back := fmt.Sprintf("/equipment/%d/edit", id)
	var in services.EquipmentInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, back)
	}
	if err := h.Equipment.Update(c.UserContext(), actor(c), id, in); err != nil {
		return h.fail(c, err, back)
	}
	applog.Audit(c, "equipment.update", map[string]any{"equipment_id": id})
	return h.done(c, "Equipment updated.", fmt.Sprintf("/equipment/%d", id))
}

// POST /equipment/:id/adjust
func (h *EquipmentHandler) Adjust(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	show := fmt.Sprintf("/equipment/%d", id)
	var in services.AdjustInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, show)
	}
	if err := h.Equipment.Adjust(c.UserContext(), actor(c), id, in); err != nil {
		return h.fail(c, err, show)
	}
	applog.Audit(c, "equipment.adjust", map[string]any{"equipment_id": id, "direction": in.Direction, "qty": in.Quantity})
	verb := "increased"
	if in.Direction == string(domain.Decrease) {
		verb = "decreased"
	}
	return h.done(c, fmt.Sprintf("Stock %s by %d. Movement recorded.", verb, in.Quantity), show)
}

// POST /equipment/:id/delete
func (h *EquipmentHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Equipment.SoftDelete(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/equipment")
	}
	applog.Audit(c, "equipment.soft_delete", map[string]any{"equipment_id": id, "changed": changed})
	return h.archived(c, changed, "Equipment archived.", "This equipment is already archived.", "/equipment")
}

// POST /equipment/:id/restore
func (h *EquipmentHandler) Restore(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Equipment.Restore(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/equipment?archived=1")
	}
	applog.Audit(c, "equipment.restore", map[string]any{"equipment_id": id, "changed": changed})
	return h.archived(c, changed, "Equipment restored.", "This equipment is not archived.", "/equipment")
}
