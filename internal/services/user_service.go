package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
	"equiptrack/internal/validate"
)

type UserInput struct {
	Email    string `form:"email" validate:"required,email,max=100"`
	FullName string `form:"full_name" validate:"required,max=120"`
	Role     string `form:"role" validate:"oneof=USER ADMIN"`
}

type PasswordInput struct {
	Password string `form:"password" validate:"required"`
	Confirm  string `form:"confirm" validate:"required"`
}

// UserService is the admin-side user directory.
type UserService struct {
	Base
	Users *repos.UserRepo
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.Users.ByID(ctx, id)
	return u, lookup("user", err)
}

func (s *UserService) Trail(ctx context.Context, id int64) (Trail, error) {
	return (&AuditService{Repo: repos.NewAuditRepo(s.DB)}).Trail(ctx, domain.EntityUser, id)
}

func (in *UserInput) clean() error {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := check(*in); err != nil {
		return err
	}
	if _, ok := validate.Email(in.Email); !ok {
		return invalid("email", "email must be a valid email address")
	}
	return nil
}

func (in PasswordInput) hash() (string, error) {
	if err := check(in); err != nil {
		return "", err
	}
	if in.Password != in.Confirm {
		return "", invalid("confirm", "passwords do not match")
	}
	if !validate.Password(in.Password) {
		return "", invalid("password", "password needs 8 to 72 characters with upper and lower case letters, a digit and a symbol")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	return string(h), err
}

func (s *UserService) Create(ctx context.Context, actor int64, in UserInput, pw PasswordInput) (u domain.User, err error) {
	defer func() { s.observe("user.create", err) }()
	if err := in.clean(); err != nil {
		return domain.User{}, err
	}
	h, err := pw.hash()
	if err != nil {
		return domain.User{}, err
	}
	u = domain.User{Email: in.Email, FullName: in.FullName, Role: in.Role, Hash: h, IsActive: true}
	if err := s.Users.Insert(ctx, &u); err != nil {
		if repos.IsUniqueViolation(err) {
			return domain.User{}, invalid("email", "email already registered")
		}
		return domain.User{}, err
	}
	s.record(ctx, actor, domain.ActionCreate, domain.EntityUser, u.ID)
	return u, nil
}

func (s *UserService) Update(ctx context.Context, actor, id int64, in UserInput) (err error) {
	defer func() { s.observe("user.update", err) }()
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := in.clean(); err != nil {
		return err
	}
	if actor == id && in.Role != domain.RoleAdmin {
		return invalid("role", "you cannot remove your own admin role")
	}
	u.Email, u.FullName, u.Role = in.Email, in.FullName, in.Role
	if err := s.Users.Update(ctx, *u); err != nil {
		if repos.IsUniqueViolation(err) {
			return invalid("email", "email already registered")
		}
		return err
	}
	s.record(ctx, actor, domain.ActionUpdate, domain.EntityUser, id)
	return nil
}

// SetActive enables or disables an account. Disabling also ends its sessions.
func (s *UserService) SetActive(ctx context.Context, actor, id int64, active bool) (err error) {
	action := domain.ActionActivate
	if !active {
		action = domain.ActionDeactivate
	}
	defer func() { s.observe("user."+action, err) }()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if actor == id && !active {
		return invalid("is_active", "you cannot deactivate your own account")
	}
	if err := s.Users.SetActive(ctx, id, active); err != nil {
		return err
	}
	if !active {
		if err := s.Users.DropSessions(ctx, id); err != nil {
			return err
		}
	}
	s.record(ctx, actor, action, domain.EntityUser, id)
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, actor, id int64, pw PasswordInput) (err error) {
	defer func() { s.observe("user.password_change", err) }()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	h, err := pw.hash()
	if err != nil {
		return err
	}
	if err := s.Users.SetPassword(ctx, id, h); err != nil {
		return err
	}
	s.record(ctx, actor, domain.ActionPasswordChange, domain.EntityUser, id)
	return nil
}
