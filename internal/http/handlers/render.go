package handlers

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/repos"
	"equiptrack/internal/services"
	"equiptrack/internal/validate"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind string // success | info | danger
	Text string
}

// View renders templates with the per-request context every page needs.
type View struct {
	Sessions *session.Store
	PageSize int
}

func (v *View) flash(c *fiber.Ctx, kind, text string) {
	sess, err := v.Sessions.Get(c)
	if err != nil {
		applog.Error(c, "flash.session", err, nil)
		return
	}
	sess.Set("flash_kind", kind)
	sess.Set("flash_text", text)
	if err := sess.Save(); err != nil {
		applog.Error(c, "flash.save", err, nil)
	}
}

func (v *View) takeFlash(c *fiber.Ctx) *Flash {
	sess, err := v.Sessions.Get(c)
	if err != nil {
		return nil
	}
	text, _ := sess.Get("flash_text").(string)
	if text == "" {
		return nil
	}
	kind, _ := sess.Get("flash_kind").(string)
	sess.Delete("flash_kind")
	sess.Delete("flash_text")
	_ = sess.Save()
	return &Flash{Kind: kind, Text: text}
}

// common adds what the layout needs: current user, CSRF token and path.
func common(c *fiber.Ctx, data fiber.Map) fiber.Map {
	if data == nil {
		data = fiber.Map{}
	}
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		data["User"] = u
	}
	if tok, _ := c.Locals("csrf").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	data["Path"] = c.Path()
	return data
}

func (v *View) render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	data = common(c, data)
	if f := v.takeFlash(c); f != nil {
		data["Flash"] = f
	}
	return c.Render(tmpl, data)
}

// page renders the shared message page with the given status.
func page(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("notfound", common(c, fiber.Map{"Message": msg}))
}

// done flashes a success message and redirects with 303 See Other.
func (v *View) done(c *fiber.Ctx, text, to string) error {
	v.flash(c, "success", text)
	return c.Redirect(to, fiber.StatusSeeOther)
}

// fail turns an expected business error into a flash message and a redirect
// back to the page the request came from. Anything else goes to the error handler.
func (v *View) fail(c *fiber.Ctx, err error, back string) error {
	if !services.Rejected(err) {
		return err
	}
	applog.Info(c, "request.rejected", map[string]any{"error": err.Error()})
	v.flash(c, "danger", message(err))
	return c.Redirect(back, fiber.StatusSeeOther)
}

// archived reports the outcome of an archive/restore toggle.
func (v *View) archived(c *fiber.Ctx, changed bool, doneText, noopText, to string) error {
	if !changed {
		v.flash(c, "info", noopText)
		return c.Redirect(to, fiber.StatusSeeOther)
	}
	return v.done(c, doneText, to)
}

func (v *View) notFound(c *fiber.Ctx) error {
	return page(c, fiber.StatusNotFound, "Page not found")
}

func message(err error) string {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, services.ErrInsufficientStock):
		return "Not enough stock for this operation."
	case errors.Is(err, services.ErrArchivedReference):
		return "Archived equipment or stores cannot be used."
	case errors.Is(err, services.ErrInvalidReturnQuantity):
		return "Invalid return quantity."
	case errors.Is(err, services.ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, services.ErrValidation):
		return "The form contains invalid values."
	}
	return "Something went wrong. Please try again."
}

// bind parses the form body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return &services.ValidationError{Fields: map[string]string{"_": "the form contains malformed values"}}
	}
	return nil
}

func actor(c *fiber.Ctx) int64 {
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		return u.ID
	}
	return 0
}

func paramID(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("id"))
}

// listFilter reads the shared list query parameters.
func (v *View) listFilter(c *fiber.Ctx) repos.Filter {
	f := repos.Filter{
		Q:               validate.Q(c.Query("q")),
		StoreQ:          validate.Q(c.Query("store_q")),
		EquipmentQ:      validate.Q(c.Query("equipment_q")),
		IncludeArchived: c.Query("archived") == "1",
		Page:            validate.Int(c.Query("page")),
		Limit:           validate.Int(c.Query("limit")),
	}
	if f.Limit < 1 {
		f.Limit = v.PageSize
	}
	f.StoreID, _ = validate.ID(c.Query("store"))
	f.CategoryID, _ = validate.ID(c.Query("category"))
	return f
}

// pager builds prev/next links that keep the current filters.
func pager(c *fiber.Ctx, p repos.Page) fiber.Map {
	q := url.Values{}
	for k, val := range c.Queries() {
		q.Set(k, val)
	}
	link := func(n int) string {
		q.Set("page", strconv.Itoa(n))
		return c.Path() + "?" + q.Encode()
	}
	m := fiber.Map{"Page": p}
	if p.HasPrev() {
		m["PrevURL"] = link(p.Prev())
	}
	if p.HasNext() {
		m["NextURL"] = link(p.Next())
	}
	return m
}

func back(c *fiber.Ctx, fallback string) string {
	if ref := c.Get(fiber.HeaderReferer); ref != "" {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			if u.RawQuery != "" {
				return u.Path + "?" + u.RawQuery
			}
			return u.Path
		}
	}
	return fallback
}
