package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"equiptrack/internal/domain"
	applog "equiptrack/internal/log"
	"equiptrack/internal/services"
)

// UserHandler is the admin user directory.
type UserHandler struct {
	*View
	Users *services.UserService
}

// GET /user
func (h *UserHandler) Index(c *fiber.Ctx) error {
	users, err := h.Users.List(c.UserContext())
	if err != nil {
		return err
	}
	return h.render(c, "user/index", fiber.Map{"Users": users})
}

func (h *UserHandler) form(c *fiber.Ctx, title, action string, in services.UserInput, isNew bool) error {
	return h.render(c, "user/form", fiber.Map{
		"Title":  title,
		"Action": action,
		"Form":   in,
		"IsNew":  isNew,
		"Roles":  []string{domain.RoleUser, domain.RoleAdmin},
	})
}

// GET /user/new
func (h *UserHandler) New(c *fiber.Ctx) error {
	return h.form(c, "New user", "/user/new", services.UserInput{Role: domain.RoleUser}, true)
}

// POST /user/new
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in services.UserInput
	var pw services.PasswordInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, "/user/new")
	}
	if err := bind(c, &pw); err != nil {
		return h.fail(c, err, "/user/new")
	}
	u, err := h.Users.Create(c.UserContext(), actor(c), in, pw)
	if err != nil {
		return h.fail(c, err, "/user/new")
	}
	applog.Audit(c, "user.create", map[string]any{"target_user_id": u.ID, "role": u.Role})
	return h.done(c, "User created.", fmt.Sprintf("/user/%d", u.ID))
}

func (h *UserHandler) load(c *fiber.Ctx) (*domain.User, error) {
	id, ok := paramID(c)
	if !ok {
		return nil, nil
	}
	u, err := h.Users.Get(c.UserContext(), id)
	if errors.Is(err, services.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// GET /user/:id
func (h *UserHandler) Show(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if u == nil {
		return h.notFound(c)
	}
	trail, err := h.Users.Trail(c.UserContext(), u.ID)
	if err != nil {
		return err
	}
	return h.render(c, "user/show", fiber.Map{"Target": u, "Trail": trail, "Self": u.ID == actor(c)})
}

// GET /user/:id/edit
func (h *UserHandler) Edit(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if u == nil {
		return h.notFound(c)
	}
	in := services.UserInput{Email: u.Email, FullName: u.FullName, Role: u.Role}
	return h.form(c, "Edit "+u.FullName, fmt.Sprintf("/user/%d/edit", u.ID), in, false)
}

// POST /user/:id/edit
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	edit := fmt.Sprintf("/user/%d/edit", id)
	var in services.UserInput
	if err := bind(c, &in); err != nil {
		return h.fail(c, err, edit)
	}
	if err := h.Users.Update(c.UserContext(), actor(c), id, in); err != nil {
		return h.fail(c, err, edit)
	}
	applog.Audit(c, "user.update", map[string]any{"target_user_id": id, "role": in.Role})
	return h.done(c, "User updated.", fmt.Sprintf("/user/%d", id))
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	show := fmt.Sprintf("/user/%d", id)
	if err := h.Users.SetActive(c.UserContext(), actor(c), id, active); err != nil {
		return h.fail(c, err, show)
	}
	if active {
		applog.Audit(c, "user.activate", map[string]any{"target_user_id": id})
		return h.done(c, "Account activated.", show)
	}
	applog.Audit(c, "user.deactivate", map[string]any{"target_user_id": id})
	return h.done(c, "Account deactivated. Open sessions were closed.", show)
}

// POST /user/:id/activate
func (h *UserHandler) Activate(c *fiber.Ctx) error { return h.setActive(c, true) }

// POST /user/:id/deactivate
func (h *UserHandler) Deactivate(c *fiber.Ctx) error { return h.setActive(c, false) }

// GET /user/:id/password
func (h *UserHandler) PasswordForm(c *fiber.Ctx) error {
	u, err := h.load(c)
	if err != nil {
		return err
	}
	if u == nil {
		return h.notFound(c)
	}
	return h.render(c, "user/password", fiber.Map{"Target": u})
}

// POST /user/:id/password
func (h *UserHandler) Password(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return h.notFound(c)
	}
	form := fmt.Sprintf("/user/%d/password", id)
	var pw services.PasswordInput
	if err := bind(c, &pw); err != nil {
		return h.fail(c, err, form)
	}
	if err := h.Users.ChangePassword(c.UserContext(), actor(c), id, pw); err != nil {
		return h.fail(c, err, form)
	}
	applog.Audit(c, "user.password_change", map[string]any{"target_user_id": id})
	return h.done(c, "Password changed.", fmt.Sprintf("/user/%d", id))
}
