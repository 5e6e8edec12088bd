package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/report"
	"equiptrack/internal/services"
)

type StoreHandler struct {
	*View
	Stores      *services.StoreService
	Assignments *services.AssignmentService
}

// GET /store
func (h *StoreHandler) Index(c *fiber.Ctx) error {
	f := h.listFilter(c)
	items, page, err := h.Stores.List(c.UserContext(), f)
	if err != nil {
		return err
	}
	return h.render(c, "store/index", fiber.Map{"Items": items, "Filter": f, "Pager": pager(c, page)})
}

func (h *StoreHandler) form(c *fiber.Ctx, title, action string, in services.StoreInput) error {
	return h.render(c, "store/form", fiber.Map{
		"Title":        title,
		"Action":       action,
		"Form":         in,
		"Statuses":     domain.StoreStatuses,
		"ProjectTypes": domain.StoreProjectTypes,
	})
}

// GET /store/new
func (h *StoreHandler) New(c *fiber.Ctx) error {
	return h.form(c, "New store", "/store/new", services.StoreInput{Status: "open", ProjectType: "creation"})
}

// POST /store/new
func (h *StoreHandler) Create(c *fiber.Ctx) error {
	var in services.StoreInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "/store/new")
	}
	st, err := h.Stores.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return h.fail(c, err, "/store/new")
	}
	applog.Audit(c, "store.create", map[string]any{"store_id": st.ID})
	return h.done(c, "Store created.", fmt.Sprintf("/store/%d", st.ID))
}

func (h *StoreHandler) load(c *fiber.Ctx) (domain.Store, bool, error) {
	id, ok := paramID(c)
	if !ok {
		return domain.Store{}, false, nil
	}
	st, err := h.Stores.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return domain.Store{}, false, nil
	}
	return st, err == nil, err
}

// GET /store/:id
func (h *StoreHandler) Show(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	d, err := h.Stores.Detail(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return h.notFound(c)
	}
	if err != nil {
		return err
	}
	return h.render(c, "store/show", fiber.Map{"D": d, "S": d.Store})
}

// GET /store/:id/edit
func (h *StoreHandler) Edit(c *fiber.Ctx) error {
	st, ok, err := h.load(c)
	if err != nil {
		return err
	}
	if !ok {
		return h.notFound(c)
	}
	in := services.StoreInput{
		Name: st.Name, Address: st.Address, Manager: st.Manager, Region: st.Region,
		CodeFR: st.CodeFR, Status: st.Status, ProjectType: st.ProjectType,
	}
	if st.OpenedOn != nil {
		in.OpenedOn = st.OpenedOn.Format("2006-01-02")
	}
	return h.form(c, "Edit "+st.Name, fmt.Sprintf("/store/%d/edit", st.ID), in)
}

// POST /store/:id/edit
func (h *StoreHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	back := fmt.Sprintf("/store/%d/edit", id)
	var in services.StoreInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, back)
	}
	if err := h.Stores.Update(c.UserContext(), actor(c), id, in); err != nil {
		return h.fail(c, err, back)
	}
	applog.Audit(c, "store.update", map[string]any{"store_id": id})
	return h.done(c, "Store updated.", fmt.Sprintf("/store/%d", id))
}

// POST /store/:id/delete
func (h *StoreHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Stores.SoftDelete(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/store")
	}
	applog.Audit(c, "store.soft_delete", map[string]any{"store_id": id, "changed": changed})
	return h.archived(c, changed, "Store archived.", "This store is already archived.", "/store")
}

// POST /store/:id/restore
func (h *StoreHandler) Restore(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	changed, err := h.Stores.Restore(c.UserContext(), actor(c), id)
	if err != nil {
		return h.fail(c, err, "/store?archived=1")
	}
	applog.Audit(c, "store.restore", map[string]any{"store_id": id, "changed": changed})
	return h.archived(c, changed, "Store restored.", "This store is not archived.", "/store")
}

// GET /store/:id/assigned.pdf lists what the store still holds.
func (h *StoreHandler) AssignedPDF(c *fiber.Ctx) error {
	st, ok, err := h.load(c)
	if err != nil {
		return err
	}
	if !ok {
		return h.notFound(c)
	}
	as, err := h.Assignments.ForStore(c.UserContext(), st.ID)
	if err != nil {
		return err
	}
	at := time.Now()
	var buf bytes.Buffer
	if err := report.AssignedSheet(&buf, st, report.Rows(as), at); err != nil {
		return err
	}
	applog.Info(c, "store.assigned_pdf", map[string]any{"store_id": st.ID, "bytes": buf.Len()})
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, report.Filename(st, at)))
	return c.Send(buf.Bytes())
}
