package storefront_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/pricing"
	"go-cosmetics/internal/storefront"
)

type fakeLookup struct {
	districtCalls []int
	wardCalls     []int
}

func (f *fakeLookup) Provinces(context.Context) ([]models.Province, error) {
	return []models.Province{{Code: 1, Name: "Hà Nội"}, {Code: 79, Name: "Hồ Chí Minh"}}, nil
}

func (f *fakeLookup) Districts(_ context.Context, province int) ([]models.District, error) {
	f.districtCalls = append(f.districtCalls, province)
	return []models.District{{Code: province*100 + 1, Name: "Quận 1", ProvinceCode: province}}, nil
}

func (f *fakeLookup) Wards(_ context.Context, district int) ([]models.Ward, error) {
	f.wardCalls = append(f.wardCalls, district)
	return []models.Ward{{Code: district*100 + 1, Name: "Phường 1", DistrictCode: district}}, nil
}

func TestAddressSelectorCascade(t *testing.T) {
	lookup := &fakeLookup{}
	sel := storefront.NewAddressSelector(lookup)
	ctx := context.Background()

	provinces, err := sel.LoadProvinces(ctx)
	require.NoError(t, err)
	assert.Len(t, provinces, 2)

	require.NoError(t, sel.SelectProvince(ctx, 79))
	require.NoError(t, sel.SelectDistrict(ctx, 7901))
	sel.SelectWard(790101)
	p, d, w := sel.Selection()
	assert.Equal(t, [3]int{79, 7901, 790101}, [3]int{p, d, w})
	assert.Len(t, sel.Wards(), 1)

	require.NoError(t, sel.SelectProvince(ctx, 1))
	p, d, w = sel.Selection()
	assert.Equal(t, [3]int{1, 0, 0}, [3]int{p, d, w}, "new province resets district and ward")
	assert.Empty(t, sel.Wards())
	assert.Equal(t, 101, sel.Districts()[0].Code)

	require.NoError(t, sel.SelectDistrict(ctx, 101))
	sel.SelectWard(10101)
	require.NoError(t, sel.SelectDistrict(ctx, 102))
	_, _, w = sel.Selection()
	assert.Zero(t, w, "new district resets ward")

	require.NoError(t, sel.SelectProvince(ctx, 79))
	assert.Equal(t, []int{79, 1, 79}, lookup.districtCalls, "districts are fetched again on every selection")
	assert.Equal(t, []int{7901, 101, 102}, lookup.wardCalls)
}

func TestAddressDirectoryParsesOpenAPI(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/p/":
			fmt.Fprint(w, `[{"name":"Thành phố Hà Nội","code":1,"division_type":"thành phố trung ương"},{"name":"Tỉnh Hà Giang","code":2}]`)
		case "/api/p/1":
			fmt.Fprint(w, `{"name":"Thành phố Hà Nội","code":1,"districts":[{"name":"Quận Ba Đình","code":1,"province_code":1},{"name":"Quận Hoàn Kiếm","code":2,"province_code":1}]}`)
		case "/api/d/1":
			fmt.Fprint(w, `{"name":"Quận Ba Đình","code":1,"wards":[{"name":"Phường Phúc Xá","code":1,"district_code":1}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := storefront.NewAddressDirectory(srv.URL+"/", nil)
	ctx := context.Background()

	provinces, err := dir.Provinces(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Province{{Code: 1, Name: "Thành phố Hà Nội"}, {Code: 2, Name: "Tỉnh Hà Giang"}}, provinces)

	districts, err := dir.Districts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, districts, 2)
	assert.Equal(t, models.District{Code: 2, Name: "Quận Hoàn Kiếm", ProvinceCode: 1}, districts[1])

	wards, err := dir.Wards(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Ward{{Code: 1, Name: "Phường Phúc Xá", DistrictCode: 1}}, wards)

	_, err = dir.Wards(ctx, 404)
	assert.Error(t, err)
	assert.Equal(t, []string{"/api/p/", "/api/p/1?depth=2", "/api/d/1?depth=2", "/api/d/404?depth=2"}, paths)
}

func readyCheckout(t *testing.T, b *backend, email string, products map[int]int) (*storefront.Client, *storefront.CheckoutFlow) {
	t.Helper()
	c := newClient(t, b, nil)
	signUpCustomer(t, c, email)
	ctx := context.Background()
	cart := storefront.NewCartFlow(c, storefront.NewEventBus())
	for id, qty := range products {
		_, err := cart.Add(ctx, id, qty)
		require.NoError(t, err)
	}
	require.NoError(t, cart.Load(ctx))
	_, err := cart.ProceedToCheckout()
	require.NoError(t, err)

	sel := storefront.NewAddressSelector(&fakeLookup{})
	require.NoError(t, sel.SelectProvince(ctx, 79))
	require.NoError(t, sel.SelectDistrict(ctx, 7901))
	sel.SelectWard(790101)
	return c, storefront.NewCheckoutFlow(c, sel)
}

func validForm(method int) storefront.CheckoutForm {
	return storefront.CheckoutForm{
		RecipientName:   "Nguyễn Văn A",
		Phone:           "0912345678",
		AddressDetail:   "12 Lê Lợi",
		PaymentMethodID: method,
		Note:            "Giao giờ hành chính",
	}
}

func TestPlaceOrderCashOnDelivery(t *testing.T) {
	b := newBackend(t)
	c, flow := readyCheckout(t, b, "cod@test.local", map[int]int{1: 2})
	ctx := context.Background()

	assert.Equal(t, "400.000đ", pricing.FormatVND(flow.Totals().Total))

	placed, err := flow.PlaceOrder(ctx, validForm(1))
	require.NoError(t, err)
	assert.Empty(t, placed.RedirectURL)
	assert.Equal(t, storefront.RouteOrderConfirmation, placed.Route)
	assert.Equal(t, models.OrderStatusPending, placed.Order.Status)
	require.Len(t, placed.Order.Details, 1)
	assert.Equal(t, 2, placed.Order.Details[0].Quantity)

	last, ok := c.Store().LastOrder()
	require.True(t, ok)
	assert.Equal(t, placed.Order.Code, last.Code)

	items, err := c.ListCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	mine, err := c.MyOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestPlaceOrderVNPayRedirects(t *testing.T) {
	b := newBackend(t)
	c, flow := readyCheckout(t, b, "vnpay@test.local", map[int]int{5: 1})

	placed, err := flow.PlaceOrder(context.Background(), validForm(2))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(placed.RedirectURL, "https://sandbox.vnpayment.vn/"), placed.RedirectURL)
	assert.Contains(t, placed.RedirectURL, placed.Order.Code)
	assert.Empty(t, placed.Route)

	_, ok := c.Store().LastOrder()
	assert.False(t, ok)
}

func TestPlaceOrderLoadsMissingProducts(t *testing.T) {
	b := newBackend(t)
	c, flow := readyCheckout(t, b, "stale@test.local", map[int]int{1: 2})
	ctx := context.Background()

	items := c.Store().CheckoutItems()
	require.Len(t, items, 1)
	items[0].Product = nil
	require.NoError(t, c.Store().SetCheckoutItems(items))

	flow = storefront.NewCheckoutFlow(c, flow.Address())
	assert.True(t, flow.Totals().Total.IsZero())

	require.NoError(t, flow.LoadProducts(ctx))
	require.NotNil(t, flow.Items()[0].Product)
	assert.Equal(t, "400.000đ", pricing.FormatVND(flow.Totals().Total))

	placed, err := flow.PlaceOrder(ctx, validForm(1))
	require.NoError(t, err)
	assert.True(t, placed.Order.Total.Equal(flow.Totals().Total))
	require.Len(t, placed.Order.Details, 1)
	assert.True(t, placed.Order.Details[0].UnitPrice.Equal(flow.Items()[0].Product.UnitPrice()))
}

func TestPlaceOrderFailsWhenProductIsGone(t *testing.T) {
	b := newBackend(t)
	c, flow := readyCheckout(t, b, "gone@test.local", map[int]int{1: 1})
	ctx := context.Background()

	items := c.Store().CheckoutItems()
	items = append(items, models.CartItem{ProductID: 999, Quantity: 1})
	require.NoError(t, c.Store().SetCheckoutItems(items))

	_, err := storefront.NewCheckoutFlow(c, flow.Address()).PlaceOrder(ctx, validForm(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load product 999")

	mine, err := c.MyOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPlaceOrderValidatesBeforeCalling(t *testing.T) {
	b := newBackend(t)
	_, flow := readyCheckout(t, b, "invalid@test.local", map[int]int{1: 1})

	form := validForm(1)
	form.Phone = "12345"
	form.AddressDetail = " "

	before := b.requests.Load()
	_, err := flow.PlaceOrder(context.Background(), form)
	var fieldErrs storefront.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "phone")
	assert.Contains(t, fieldErrs, "address_detail")
	assert.NotContains(t, fieldErrs, "province")
	assert.Equal(t, before, b.requests.Load())

	sel := storefront.NewAddressSelector(&fakeLookup{})
	err = storefront.NewCheckoutFlow(newClient(t, b, nil), sel).Validate(validForm(1))
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "province")
	assert.Contains(t, fieldErrs, "ward")
}
