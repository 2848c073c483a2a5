package storefront_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/storefront"
)

func TestSessionLoginRoutesByRole(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	admin := storefront.NewSession(newClient(t, b, nil))
	route, err := admin.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	assert.Equal(t, storefront.RouteAdminDashboard, route)
	assert.True(t, admin.IsAdmin())

	c := newClient(t, b, nil)
	customer := storefront.NewSession(c)
	_, err = customer.Register(ctx, models.RegisterRequest{Username: "lan", Email: "lan@test.local", Password: "secret1"})
	require.NoError(t, err)
	route, err = customer.Login(ctx, "lan@test.local", "secret1")
	require.NoError(t, err)
	assert.Equal(t, storefront.RouteHome, route)
	assert.True(t, customer.Authenticated())
	assert.False(t, customer.IsAdmin())

	mirrored, ok := c.Store().CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "lan@test.local", mirrored.Email)
	assert.NotEmpty(t, c.Store().Token())
}

func TestLandingRouteWithoutKnownRole(t *testing.T) {
	assert.Equal(t, storefront.RouteAccount, storefront.LandingRoute(models.User{Roles: []string{"STAFF"}}))
	assert.Equal(t, storefront.RouteHome, storefront.LandingRoute(models.User{Roles: []string{"customer"}}))
}

func TestSessionLogoutClearsMemoryAndStore(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	s := signUpCustomer(t, c, "bye@test.local")
	require.True(t, s.Authenticated())

	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	_, ok := s.User()
	assert.False(t, ok)
	assert.Empty(t, c.Store().Token())
	_, ok = c.Store().CurrentUser()
	assert.False(t, ok)

	assert.Equal(t, storefront.RouteLogin, storefront.GuardSession(s, "/account").Redirect)
}

func TestSessionRestore(t *testing.T) {
	b := newBackend(t)
	storage := storefront.NewMemoryStorage()
	c1, err := storefront.New(storefront.Config{BaseURL: b.URL, Store: storefront.NewStore(storage)})
	require.NoError(t, err)
	signUpCustomer(t, c1, "again@test.local")

	c2, err := storefront.New(storefront.Config{BaseURL: b.URL, Store: storefront.NewStore(storage)})
	require.NoError(t, err)
	restored := storefront.NewSession(c2)
	require.NoError(t, restored.Restore(context.Background()))
	u, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, "again@test.local", u.Email)
	assert.False(t, restored.Loading())

	empty := storefront.NewSession(newClient(t, b, nil))
	require.NoError(t, empty.Restore(context.Background()))
	assert.False(t, empty.Authenticated())
}

func TestSessionProfileAndPassword(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	s := signUpCustomer(t, c, "profile@test.local")
	ctx := context.Background()

	name, phone := "Trần Thị B", "0987654321"
	u, err := s.UpdateProfile(ctx, models.UpdateProfileRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, u.FullName)
	mirrored, _ := c.Store().CurrentUser()
	assert.Equal(t, phone, mirrored.Phone)

	var fieldErrs storefront.FieldErrors
	require.ErrorAs(t, s.ChangePassword(ctx, "secret1", "newpass", "other"), &fieldErrs)
	assert.Contains(t, fieldErrs, "confirm_password")

	require.NoError(t, s.ChangePassword(ctx, "secret1", "newpass", "newpass"))
	require.NoError(t, s.Logout())
	_, err = s.Login(ctx, "profile@test.local", "newpass")
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	err := storefront.ValidateRegistration(models.RegisterRequest{Email: "nope", Password: "123", Phone: "0123"})
	var fieldErrs storefront.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 4)
}

func TestCompleteOAuthWithToken(t *testing.T) {
	b := newBackend(t)
	issuer := newClient(t, b, nil)
	signUpCustomer(t, issuer, "oauth@test.local")
	token := issuer.Store().Token()

	for _, key := range []string{"accessToken", "access_token"} {
		t.Run(key, func(t *testing.T) {
			c := newClient(t, b, nil)
			s := storefront.NewSession(c)
			route, err := s.CompleteOAuth(context.Background(), url.Values{key: {token}})
			require.NoError(t, err)
			assert.Equal(t, storefront.RouteHome, route)
			u, _ := s.User()
			assert.Equal(t, "oauth@test.local", u.Email)
		})
	}
}

func TestCompleteOAuthRejectsBadCallbacks(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	s := storefront.NewSession(c)
	ctx := context.Background()

	_, err := s.CompleteOAuth(ctx, url.Values{"email": {"x@test.local"}})
	assert.ErrorIs(t, err, storefront.ErrNoOAuthCredentials)

	_, err = s.CompleteOAuth(ctx, url.Values{"accessToken": {"forged"}, "email": {"x@test.local"}})
	assert.ErrorIs(t, err, storefront.ErrUnauthorized)
	assert.Empty(t, c.Store().Token())

	// Google sign-in is not configured on the test backend.
	_, err = s.CompleteOAuth(ctx, url.Values{"code": {"abc"}})
	var apiErr *storefront.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.False(t, s.Authenticated())
}
