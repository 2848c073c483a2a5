package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	users := NewUserService()

	u, err := users.Register(models.RegisterRequest{Username: "lan", Email: "Lan@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", u.Email)
	assert.Equal(t, []string{models.RoleCustomer}, u.Roles)

	_, err = users.Register(models.RegisterRequest{Username: "lan2", Email: "lan@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = users.Register(models.RegisterRequest{Username: "x", Email: "not-an-email", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := users.Authenticate(" LAN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.Authenticate("lan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDisabledAccountCannotLogin(t *testing.T) {
	users := NewUserService()
	u, err := users.Register(models.RegisterRequest{Username: "an", Email: "an@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = users.Update(u.ID, models.UserInput{Active: ptr(false)}, nil)
	require.NoError(t, err)

	_, err = users.Authenticate("an@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestProfileAndPassword(t *testing.T) {
	users := NewUserService()
	u, err := users.Register(models.RegisterRequest{Username: "mai", Email: "mai@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = users.UpdateProfile(u.ID, models.UpdateProfileRequest{Phone: ptr("123")})
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := users.UpdateProfile(u.ID, models.UpdateProfileRequest{FullName: ptr("Trần Thị Mai"), Phone: ptr("0987654321")})
	require.NoError(t, err)
	assert.Equal(t, "Trần Thị Mai", updated.FullName)

	assert.ErrorIs(t, users.ChangePassword(u.ID, "nope", "newpass1"), ErrInvalidCredentials)
	require.NoError(t, users.ChangePassword(u.ID, "secret1", "newpass1"))
	_, err = users.Authenticate("mai@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestUpsertGoogleUser(t *testing.T) {
	users := NewUserService()

	created, err := users.UpsertGoogleUser(auth.GoogleProfile{Email: "hoa@gmail.com", Name: "Hoa", Picture: "http://img", VerifiedEmail: true})
	require.NoError(t, err)
	assert.Equal(t, "google", created.Provider)
	assert.True(t, created.EmailVerified)

	again, err := users.UpsertGoogleUser(auth.GoogleProfile{Email: "HOA@gmail.com", Name: "Hoa N"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, users.List(), 1)

	_, err = users.Authenticate("hoa@gmail.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedAdminIsIdempotent(t *testing.T) {
	users := NewUserService()
	a, err := users.SeedAdmin("admin@shop.vn", "admin123")
	require.NoError(t, err)
	assert.True(t, a.IsAdmin())

	b, err := users.SeedAdmin("admin@shop.vn", "admin123")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 0, users.CountCustomers())
}

func TestAdminUpdateEmailConflict(t *testing.T) {
	users := NewUserService()
	a, _ := users.Register(models.RegisterRequest{Username: "a", Email: "a@example.com", Password: "secret1"})
	_, _ = users.Register(models.RegisterRequest{Username: "b", Email: "b@example.com", Password: "secret1"})

	_, err := users.Update(a.ID, models.UserInput{Email: ptr("b@example.com")}, nil)
	assert.ErrorIs(t, err, ErrConflict)

	u, err := users.Update(a.ID, models.UserInput{Email: ptr("a2@example.com"), Roles: []string{"admin"}}, nil)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	_, err = users.Authenticate("a2@example.com", "secret1")
	assert.NoError(t, err)

	require.NoError(t, users.Delete(a.ID))
	assert.ErrorIs(t, users.Delete(a.ID), ErrNotFound)
}
