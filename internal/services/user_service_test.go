package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiptrack/internal/domain"
	"equiptrack/internal/repos"
	"equiptrack/internal/services"
)

func TestLogin(t *testing.T) {
	e := setup(t, 0)
	auth := &services.AuthService{Users: repos.NewUserRepo(e.db)}
	ctx := context.Background()
	sid := uuid.NewString()

	_, err := auth.Login(ctx, sid, "admin@equiptrack.test", "wrong")
	require.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login(ctx, sid, "nobody@equiptrack.test", repos.SeedPassword)
	require.ErrorIs(t, err, services.ErrBadCreds)
	_, err = auth.Login(ctx, sid, "bob@equiptrack.test", repos.SeedPassword)
	require.ErrorIs(t, err, services.ErrInactive)

	u, err := auth.Login(ctx, sid, "ADMIN@equiptrack.test", repos.SeedPassword)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	cur, err := auth.CurrentUser(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, u.ID, cur.ID)

	require.NoError(t, auth.Logout(ctx, sid))
	_, err = auth.CurrentUser(ctx, sid)
	assert.Error(t, err)
}

func TestUserLifecycle(t *testing.T) {
	e := setup(t, 0)
	ctx := context.Background()
	auth := &services.AuthService{Users: repos.NewUserRepo(e.db)}

	pw := services.PasswordInput{Password: "S3cure!pass", Confirm: "S3cure!pass"}
	u, err := e.users.Create(ctx, e.admin, services.UserInput{Email: "carol@equiptrack.test", FullName: "Carol", Role: domain.RoleUser}, pw)
	require.NoError(t, err)

	_, err = e.users.Create(ctx, e.admin, services.UserInput{Email: "Carol@equiptrack.test", FullName: "Carol 2", Role: domain.RoleUser}, pw)
	require.ErrorIs(t, err, services.ErrValidation)

	sid := uuid.NewString()
	_, err = auth.Login(ctx, sid, "carol@equiptrack.test", "S3cure!pass")
	require.NoError(t, err)

	require.NoError(t, e.users.SetActive(ctx, e.admin, u.ID, false))
	_, err = auth.CurrentUser(ctx, sid)
	assert.Error(t, err, "deactivation ends sessions")

	require.NoError(t, e.users.SetActive(ctx, e.admin, u.ID, true))
	require.NoError(t, e.users.Update(ctx, e.admin, u.ID, services.UserInput{Email: "carol@equiptrack.test", FullName: "Carol Dupont", Role: domain.RoleAdmin}))

	err = e.users.ChangePassword(ctx, e.admin, u.ID, services.PasswordInput{Password: "weak", Confirm: "weak"})
	require.ErrorIs(t, err, services.ErrValidation)
	err = e.users.ChangePassword(ctx, e.admin, u.ID, services.PasswordInput{Password: "N3w!Passw", Confirm: "other"})
	require.ErrorIs(t, err, services.ErrValidation)
	require.NoError(t, e.users.ChangePassword(ctx, e.admin, u.ID, services.PasswordInput{Password: "N3w!Passw", Confirm: "N3w!Passw"}))

	_, err = auth.Login(ctx, uuid.NewString(), "carol@equiptrack.test", "N3w!Passw")
	require.NoError(t, err)

	trail, err := e.users.Trail(ctx, u.ID)
	require.NoError(t, err)
	var actions []string
	for _, a := range trail.History {
		actions = append(actions, a.Action)
	}
	assert.Equal(t, []string{
		domain.ActionPasswordChange, domain.ActionUpdate, domain.ActionActivate, domain.ActionDeactivate, domain.ActionCreate,
	}, actions)
}

func TestAdminCannotLockThemselvesOut(t *testing.T) {
	e := setup(t, 0)
	ctx := context.Background()

	require.ErrorIs(t, e.users.SetActive(ctx, e.admin, e.admin, false), services.ErrValidation)
	err := e.users.Update(ctx, e.admin, e.admin, services.UserInput{Email: "admin@equiptrack.test", FullName: "Admin", Role: domain.RoleUser})
	require.ErrorIs(t, err, services.ErrValidation)
}
