package storefront_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/storefront"
)

func TestClientRequiresBaseURL(t *testing.T) {
	_, err := storefront.New(storefront.Config{})
	assert.Error(t, err)
}

func TestClientFailedLoginKeepsBackendMessage(t *testing.T) {
	b := newBackend(t)
	hookCalls := 0
	c := newClient(t, b, func() { hookCalls++ })

	_, err := c.Login(context.Background(), adminEmail, "wrong-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storefront.ErrUnauthorized))
	assert.Equal(t, "Email hoặc mật khẩu không đúng", storefront.Message(err))
	assert.Zero(t, hookCalls, "no session was active")
}

func TestClientExpiredTokenClearsSession(t *testing.T) {
	b := newBackend(t)
	hookCalls := 0
	c := newClient(t, b, func() { hookCalls++ })
	require.NoError(t, c.Store().SetToken("not-a-jwt"))
	require.NoError(t, c.Store().SetCurrentUser(models.User{ID: 9, Email: "ghost@test.local"}))

	_, err := c.Profile(context.Background())
	require.ErrorIs(t, err, storefront.ErrUnauthorized)
	assert.Equal(t, 1, hookCalls)
	assert.Empty(t, c.Store().Token())
	_, ok := c.Store().CurrentUser()
	assert.False(t, ok)
}

func TestClientDecodesPagedList(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)

	page, err := c.ListProducts(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Meta.Limit)
	assert.True(t, page.Meta.HasNext)
	assert.False(t, page.Meta.HasPrev)
}

func TestClientProductLookups(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	ctx := context.Background()

	p, err := c.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Sữa rửa mặt dịu nhẹ", p.Name)

	_, err = c.GetProduct(ctx, 999)
	var apiErr *storefront.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)

	found, err := c.SearchProducts(ctx, "serum", 1, 10)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Serum Vitamin C", found.Items[0].Name)

	cats, err := c.ListCategories(ctx, true)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)
}

func TestClientWishlist(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	signUpCustomer(t, c, "wish@test.local")
	ctx := context.Background()

	require.NoError(t, c.AddToWishlist(ctx, 2))
	require.NoError(t, c.AddToWishlist(ctx, 2))
	require.NoError(t, c.AddToWishlist(ctx, 5))
	list, err := c.Wishlist(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Serum Vitamin C", list[1].Name)

	require.NoError(t, c.RemoveFromWishlist(ctx, 2))
	assert.Error(t, c.RemoveFromWishlist(ctx, 2))
	assert.Error(t, c.AddToWishlist(ctx, 999))
}

func TestClientPaymentMethodsAndBrands(t *testing.T) {
	b := newBackend(t)
	c := newClient(t, b, nil)
	signIn(t, c, adminEmail, adminPassword)
	ctx := context.Background()

	methods, err := c.ListPaymentMethods(ctx, false)
	require.NoError(t, err)
	require.Len(t, methods, 2)

	momo, err := c.CreatePaymentMethod(ctx, models.CreatePaymentMethodRequest{Code: "momo", Name: "Ví MoMo"})
	require.NoError(t, err)
	assert.Equal(t, "MOMO", momo.Code)

	_, err = c.SetPaymentMethodActive(ctx, momo.ID, false)
	require.NoError(t, err)
	active, err := c.ListPaymentMethods(ctx, false)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	all, err := c.ListPaymentMethods(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	brands, err := c.ListBrandsPaged(ctx, 2, 5)
	require.NoError(t, err)
	assert.Len(t, brands.Items, 3)
	assert.Equal(t, 8, brands.Meta.Total)
	assert.True(t, brands.Meta.HasPrev)
}

func TestClientStatistics(t *testing.T) {
	b := newBackend(t)
	_, flow := readyCheckout(t, b, "stats@test.local", map[int]int{5: 1})
	ctx := context.Background()
	_, err := flow.PlaceOrder(ctx, validForm(1))
	require.NoError(t, err)

	c := newClient(t, b, nil)
	signIn(t, c, adminEmail, adminPassword)

	dash, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.TotalOrders)

	best, err := c.BestSellers(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, best)
	assert.Equal(t, 5, best[0].ProductID)

	chart, err := c.SalesChart(ctx, time.Now().Year())
	require.NoError(t, err)
	assert.Len(t, chart, 12)
}

func TestMessageFallback(t *testing.T) {
	assert.Equal(t, "Đã có lỗi xảy ra, vui lòng thử lại", storefront.Message(errors.New("boom")))
	assert.Equal(t, "Bạn không có quyền thực hiện thao tác này", storefront.Message(storefront.ErrAdminRequired))
	assert.Equal(t, "Số điện thoại không hợp lệ",
		storefront.Message(storefront.FieldErrors{"phone": "Số điện thoại không hợp lệ"}))
}
