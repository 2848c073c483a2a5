package storefront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/storefront"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		loading       bool
		authenticated bool
		admin         bool
		want          storefront.GuardDecision
	}{
		{name: "public home", path: "/", want: storefront.GuardDecision{}},
		{name: "public product", path: "/products/3", want: storefront.GuardDecision{}},
		{name: "public while loading", path: "/login", loading: true, want: storefront.GuardDecision{}},
		{name: "private while loading", path: "/cart", loading: true, want: storefront.GuardDecision{Wait: true}},
		{name: "signed out", path: "/checkout", want: storefront.GuardDecision{Redirect: "/login"}},
		{name: "customer account", path: "/account", authenticated: true, want: storefront.GuardDecision{}},
		{name: "customer on admin", path: "/admin/products", authenticated: true, want: storefront.GuardDecision{Redirect: "/"}},
		{name: "customer on admin root", path: "/admin", authenticated: true, want: storefront.GuardDecision{Redirect: "/"}},
		{name: "admin", path: "/admin/dashboard", authenticated: true, admin: true, want: storefront.GuardDecision{}},
		{name: "admin-like prefix", path: "/administrator", authenticated: true, want: storefront.GuardDecision{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storefront.Guard(tt.path, tt.loading, tt.authenticated, tt.admin)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == storefront.GuardDecision{}, got.Allowed())
		})
	}
}

func TestStatusLabel(t *testing.T) {
	delivered := storefront.OrderStatusLabel(models.OrderStatusDelivered)
	assert.Equal(t, storefront.Label{Text: "Đã giao hàng", Style: storefront.StyleSuccess}, delivered)

	assert.Equal(t, storefront.StyleDanger, storefront.OrderStatusLabel(models.OrderStatusCancelled).Style)
	assert.Equal(t, "Đã thanh toán", storefront.PaymentStatusLabel(models.PaymentStatusPaid).Text)

	unknown := storefront.StatusLabel("HOÀN TRẢ")
	assert.Equal(t, storefront.Label{Text: "HOÀN TRẢ", Style: storefront.StyleDefault}, unknown)
	assert.Equal(t, storefront.StyleDefault, storefront.StatusLabel("").Style)
}
