package services

import (
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/logging"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/payment/vnpay"
)

type testStore struct {
	categories *CategoryService
	brands     *BrandService
	products   *ProductService
	carts      *CartService
	payments   *PaymentMethodService
	orders     *OrderService
	users      *UserService
	gateway    *fakeGateway
}

type fakeGateway struct {
	result vnpay.ReturnResult
	err    error
}

func (f *fakeGateway) BuildPaymentURL(req vnpay.PaymentRequest) (string, error) {
	return "https://pay.example/?ref=" + req.OrderCode + "&amount=" + req.Amount.String(), nil
}

func (f *fakeGateway) VerifyReturn(url.Values) (vnpay.ReturnResult, error) {
	return f.result, f.err
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	st := &testStore{
		categories: NewCategoryService(),
		brands:     NewBrandService(),
		payments:   NewPaymentMethodService(),
		users:      NewUserService(),
		gateway:    &fakeGateway{},
	}
	st.products = NewProductService(st.categories, st.brands)
	st.carts = NewCartService(st.products)
	st.orders = NewOrderService(st.products, st.carts, st.payments, st.gateway, logging.Discard())
	return st
}

func ptr[T any](v T) *T { return &v }

func (st *testStore) addProduct(t *testing.T, name string, price int64, stock int) *models.Product {
	t.Helper()
	p, err := st.products.Create(models.ProductInput{
		Name:  ptr(name),
		Price: ptr(decimal.NewFromInt(price)),
		Stock: ptr(stock),
	})
	require.NoError(t, err)
	return p
}

func checkoutRequest(methodID int, lines ...models.OrderDetailInput) models.CheckoutRequest {
	return models.CheckoutRequest{
		AddressDetail:   "12 Nguyễn Huệ",
		ProvinceCode:    79,
		DistrictCode:    760,
		WardCode:        26734,
		Phone:           "0912345678",
		PaymentMethodID: methodID,
		Details:         lines,
	}
}
