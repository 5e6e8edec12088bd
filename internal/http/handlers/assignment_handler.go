package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "equiptrack/internal/log"
	"equiptrack/internal/services"
	"equiptrack/internal/validate"
)

type AssignmentHandler struct {
	*View
	Assignments *services.AssignmentService
	Equipment   *services.EquipmentService
	Stores      *services.StoreService
}

// GET /assignment
func (h *AssignmentHandler) Index(c *fiber.Ctx) error {
	f := h.listFilter(c)
	items, page, err := h.Assignments.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	stores, err := h.Stores.All(c.UserContext(), false)
	if err != nil {
		return err
	}
	return h.render(c, "assignment/index", fiber.Map{
		"Items":  items,
		"Stores": stores,
		"Filter": f,
		"Pager":  pager(c, page),
	})
}

type returnInput struct {
	Quantity int `form:"quantity"`
}

func (h *AssignmentHandler) form(c *fiber.Ctx, data fiber.Map) error {
	equipment, err := h.Equipment.Active(c.UserContext())
	if err != nil {
		return err
	}
	stores, err := h.Stores.All(c.UserContext(), false)
	if err != nil {
		return err
	}
	data["Equipment"] = equipment
	data["Stores"] = stores
	return h.render(c, "assignment/form", data)
}

// GET /assignment/new
func (h *AssignmentHandler) New(c *fiber.Ctx) error {
	in := services.AssignmentInput{Quantity: 1}
	in.EquipmentID, _ = validate.ID(c.Query("equipment"))
	in.StoreID, _ = validate.ID(c.Query("store"))
	return h.form(c, fiber.Map{"Title": "New assignment", "Action": "/assignment/new", "Form": in, "IsNew": true})
}

// POST /assignment/new
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	var in services.AssignmentInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "/assignment/new")
	}
	a, err := h.Assignments.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err, back(c, "/assignment/new"))
	}
	applog.Audit(c, "assignment.create", map[string]any{
		"assignment_id": a.ID, "equipment_id": a.EquipmentID, "store_id": a.StoreID, "qty": a.Quantity,
	})
	return h.done(c, fmt.Sprintf("%d item(s) assigned. Stock updated.", a.Quantity), fmt.Sprintf("/assignment/%d", a.ID))
}

// GET /assignment/:id
func (h *AssignmentHandler) Show(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	d, err := h.Assignments.Detail(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return err
	}
	return h.render(c, "assignment/show", fiber.Map{"D": d, "A": d.Assignment})
}

// GET /assignment/:id/edit
func (h *AssignmentHandler) Edit(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	a, err := h.Assignments.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return err
	}
	in := services.AssignmentInput{EquipmentID: a.EquipmentID, StoreID: a.StoreID, Quantity: a.Quantity}
	return h.form(c, fiber.Map{
		"Title":  fmt.Sprintf("Edit assignment #%d", a.ID),
		"Action": fmt.Sprintf("/assignment/%d/edit", a.ID),
		"Form":   in,
		"A":      a,
	})
}

// POST /assignment/:id/edit
func (h *AssignmentHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	edit := fmt.Sprintf("/assignment/%d/edit", id)
	var in services.EditInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, edit)
	}
	if err := h.Assignments.Edit(c.UserContext(), actor(c), id, in); err != nil {
		return h.fail(c, err, edit)
	}
	applog.Audit(c, "assignment.update", map[string]any{"assignment_id": id, "store_id": in.StoreID, "qty": in.Quantity})
	return h.done(c, "Assignment updated. Stock adjusted.", fmt.Sprintf("/assignment/%d", id))
}

// POST /assignment/:id/return
func (h *AssignmentHandler) Return(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	show := fmt.Sprintf("/assignment/%d", id)
	var in returnInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, show)
	}
	if err := h.Assignments.Return(c.UserContext(), actor(c), id, in.Quantity); err != nil {
		return h.fail(c, err, back(c, show))
	}
	applog.Audit(c, "assignment.return", map[string]any{"assignment_id": id, "qty": in.Quantity})
	return h.done(c, fmt.Sprintf("%d item(s) returned to stock.", in.Quantity), back(c, show))
}

// POST /assignment/:id/delete
func (h *AssignmentHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Assignments.SoftDelete(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/assignment")
	}
	applog.Audit(c, "assignment.soft_delete", map[string]any{"assignment_id": id, "changed": changed})
	return h.archived(c, changed, "Assignment archived.", "This assignment is already archived.", "/assignment")
}

// POST /assignment/:id/restore
func (h *AssignmentHandler) Restore(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Assignments.Restore(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/assignment?archived=1")
	}
	applog.Audit(c, "assignment.restore", map[string]any{"assignment_id": id, "changed": changed})
	return h.archived(c, changed, "Assignment restored.", "This assignment is not archived.", "/assignment")
}
