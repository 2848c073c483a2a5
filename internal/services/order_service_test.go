package services

import (
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/models"
	"go-cosmetics/internal/payment/vnpay"
)

const (
	codMethodID   = 1
	vnpayMethodID = 2
)

func TestCheckoutRecomputesTotalsAndReservesStock(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	b := st.addProduct(t, "B", 200000, 5)
	_, _ = st.carts.Add(1, a.ID, 1)
	_, _ = st.carts.Add(1, b.ID, 2)

	req := checkoutRequest(codMethodID,
		models.OrderDetailInput{ProductID: a.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		models.OrderDetailInput{ProductID: b.ID, Quantity: 2},
	)
	req.Total = decimal.NewFromInt(12345)

	resp, err := st.orders.Checkout(1, req, "127.0.0.1")
	require.NoError(t, err)
	assert.Empty(t, resp.PaymentURL)

	order := resp.Order
	assert.True(t, decimal.NewFromInt(500000).Equal(order.Subtotal))
	assert.True(t, order.ShippingFee.IsZero())
	assert.True(t, decimal.NewFromInt(500000).Equal(order.Total))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	require.Len(t, order.Details, 2)
	assert.True(t, decimal.NewFromInt(100000).Equal(order.Details[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(400000).Equal(order.Details[1].LineTotal))
	assert.NotEmpty(t, order.Code)

	got, _ := st.products.GetProductByID(b.ID)
	assert.Equal(t, 3, got.Stock)
	assert.Empty(t, st.carts.List(1))
}

func TestCheckoutChargesShippingBelowThreshold(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)

	resp, err := st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1}), "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(30000).Equal(resp.Order.ShippingFee))
	assert.True(t, decimal.NewFromInt(130000).Equal(resp.Order.Total))
}

func TestCheckoutValidation(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 1)

	req := checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1})
	req.WardCode = 0
	_, err := st.orders.Checkout(1, req, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = st.orders.Checkout(1, checkoutRequest(codMethodID), "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = st.orders.Checkout(1, checkoutRequest(99, models.OrderDetailInput{ProductID: a.ID, Quantity: 1}), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	req = checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1})
	req.Phone = "12345"
	_, err = st.orders.Checkout(1, req, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckoutWithRedirectPayment(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)

	resp, err := st.orders.Checkout(1, checkoutRequest(vnpayMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1}), "10.0.0.1")
	require.NoError(t, err)
	assert.Contains(t, resp.PaymentURL, resp.Order.Code)

	st.gateway.result = vnpay.ReturnResult{OrderCode: resp.Order.Code, Success: true, ResponseCode: "00", Amount: resp.Order.Total}
	order, ok, err := st.orders.HandleVNPayReturn(url.Values{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	st.gateway.err = errors.New("bad signature")
	_, _, err = st.orders.HandleVNPayReturn(url.Values{})
	assert.ErrorIs(t, err, ErrForbidden)
}

// vnpayOrder places a one-line VNPay order for two units of a product with
// five in stock.
func vnpayOrder(t *testing.T, st *testStore) (models.Order, *models.Product) {
	t.Helper()
	a := st.addProduct(t, "A", 100000, 5)
	resp, err := st.orders.Checkout(1, checkoutRequest(vnpayMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
	require.NoError(t, err)
	return resp.Order, a
}

func TestVNPayFailedReturnCancelsOrder(t *testing.T) {
	st := newTestStore(t)
	placed, a := vnpayOrder(t, st)
	got, _ := st.products.GetProductByID(a.ID)
	require.Equal(t, 3, got.Stock)

	st.gateway.result = vnpay.ReturnResult{OrderCode: placed.Code, ResponseCode: "24", Amount: placed.Total}
	order, ok, err := st.orders.HandleVNPayReturn(url.Values{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.PaymentStatusFailed, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	got, _ = st.products.GetProductByID(a.ID)
	assert.Equal(t, 5, got.Stock)
}

func TestVNPayReturnNeverDowngradesPaidOrder(t *testing.T) {
	st := newTestStore(t)
	placed, a := vnpayOrder(t, st)

	st.gateway.result = vnpay.ReturnResult{OrderCode: placed.Code, Success: true, ResponseCode: "00", Amount: placed.Total}
	_, ok, err := st.orders.HandleVNPayReturn(url.Values{})
	require.NoError(t, err)
	require.True(t, ok)

	st.gateway.result = vnpay.ReturnResult{OrderCode: placed.Code, ResponseCode: "24", Amount: placed.Total}
	order, ok, err := st.orders.HandleVNPayReturn(url.Values{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	got, _ := st.products.GetProductByID(a.ID)
	assert.Equal(t, 3, got.Stock)

	_, err = st.orders.UpdatePaymentStatus(placed.ID, models.PaymentStatusUnpaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestVNPaySuccessOnCancelledOrderStaysUnpaid(t *testing.T) {
	st := newTestStore(t)
	placed, a := vnpayOrder(t, st)

	_, err := st.orders.CancelByCustomer(placed.ID, 1)
	require.NoError(t, err)

	st.gateway.result = vnpay.ReturnResult{OrderCode: placed.Code, Success: true, ResponseCode: "00", Amount: placed.Total}
	order, ok, err := st.orders.HandleVNPayReturn(url.Values{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)

	got, _ := st.products.GetProductByID(a.ID)
	assert.Equal(t, 5, got.Stock)

	_, err = st.orders.UpdatePaymentStatus(placed.ID, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestVNPayReturnRejectsAmountMismatch(t *testing.T) {
	st := newTestStore(t)
	placed, _ := vnpayOrder(t, st)

	for _, amount := range []decimal.Decimal{decimal.Zero, placed.Total.Sub(decimal.NewFromInt(1)), placed.Total.Mul(decimal.NewFromInt(100))} {
		st.gateway.result = vnpay.ReturnResult{OrderCode: placed.Code, Success: true, ResponseCode: "00", Amount: amount}
		_, ok, err := st.orders.HandleVNPayReturn(url.Values{})
		assert.ErrorIs(t, err, ErrInvalidInput, amount.String())
		assert.False(t, ok)
	}

	order, err := st.orders.GetByID(placed.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusUnpaid, order.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestVNPayReturnUnknownOrder(t *testing.T) {
	st := newTestStore(t)
	st.gateway.result = vnpay.ReturnResult{OrderCode: "missing", Success: true, Amount: decimal.NewFromInt(1)}
	_, _, err := st.orders.HandleVNPayReturn(url.Values{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckoutRedirectWithoutGateway(t *testing.T) {
	st := newTestStore(t)
	orders := NewOrderService(st.products, st.carts, st.payments, nil, nil)
	a := st.addProduct(t, "A", 100000, 5)

	_, err := orders.Checkout(1, checkoutRequest(vnpayMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1}), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	got, _ := st.products.GetProductByID(a.ID)
	assert.Equal(t, 5, got.Stock)
}

func TestOrderStatusTransitions(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	resp, err := st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
	require.NoError(t, err)
	id := resp.Order.ID

	_, err = st.orders.UpdateStatus(id, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = st.orders.UpdateStatus(id, "BOGUS")
	assert.ErrorIs(t, err, ErrInvalidInput)

	for _, s := range []models.OrderStatus{models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered} {
		_, err = st.orders.UpdateStatus(id, s)
		require.NoError(t, err)
	}
	order, err := st.orders.GetByID(id, 1, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)

	_, err = st.orders.UpdateStatus(id, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelReleasesStock(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	resp, err := st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
	require.NoError(t, err)

	_, err = st.orders.CancelByCustomer(resp.Order.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	order, err := st.orders.CancelByCustomer(resp.Order.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	got, _ := st.products.GetProductByID(a.ID)
	assert.Equal(t, 5, got.Stock)
}

func TestCustomerCannotCancelOnceProcessing(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 5)
	resp, err := st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
	require.NoError(t, err)

	_, err = st.orders.UpdateStatus(resp.Order.ID, models.OrderStatusProcessing)
	require.NoError(t, err)

	_, err = st.orders.CancelByCustomer(resp.Order.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = st.orders.CancelByCustomer(999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	order, err := st.orders.GetByID(resp.Order.ID, 1, false)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, order.Status)
	got, _ := st.products.GetProductByID(a.ID)
	assert.Equal(t, 3, got.Stock)
}

func TestConcurrentCustomerCancelAndAdminProcessing(t *testing.T) {
	for i := 0; i < 50; i++ {
		st := newTestStore(t)
		a := st.addProduct(t, "A", 100000, 5)
		resp, err := st.orders.Checkout(1, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 2}), "")
		require.NoError(t, err)
		id := resp.Order.ID

		var wg sync.WaitGroup
		var cancelErr, processErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, cancelErr = st.orders.CancelByCustomer(id, 1)
		}()
		go func() {
			defer wg.Done()
			_, processErr = st.orders.UpdateStatus(id, models.OrderStatusProcessing)
		}()
		wg.Wait()

		order, err := st.orders.GetByID(id, 1, false)
		require.NoError(t, err)
		got, _ := st.products.GetProductByID(a.ID)
		switch order.Status {
		case models.OrderStatusCancelled:
			// The customer won; processing a cancelled order is refused.
			require.NoError(t, cancelErr)
			assert.ErrorIs(t, processErr, ErrInvalidTransition)
			assert.Equal(t, 5, got.Stock)
		case models.OrderStatusProcessing:
			require.NoError(t, processErr)
			assert.ErrorIs(t, cancelErr, ErrInvalidTransition)
			assert.Equal(t, 3, got.Stock)
		default:
			t.Fatalf("unexpected status %s", order.Status)
		}
	}
}

func TestOrderListing(t *testing.T) {
	st := newTestStore(t)
	a := st.addProduct(t, "A", 100000, 10)
	for _, user := range []int{1, 1, 2} {
		_, err := st.orders.Checkout(user, checkoutRequest(codMethodID, models.OrderDetailInput{ProductID: a.ID, Quantity: 1}), "")
		require.NoError(t, err)
	}

	mine := st.orders.ListByUser(1)
	require.Len(t, mine, 2)
	assert.Greater(t, mine[0].ID, mine[1].ID)

	assert.Len(t, st.orders.ListAll(models.OrderFilter{}), 3)
	assert.Len(t, st.orders.ListAll(models.OrderFilter{UserID: 2}), 1)

	_, err := st.orders.UpdateStatus(mine[0].ID, models.OrderStatusProcessing)
	require.NoError(t, err)
	assert.Len(t, st.orders.ListAll(models.OrderFilter{Status: models.OrderStatusProcessing}), 1)

	_, err = st.orders.GetByID(mine[0].ID, 2, true)
	assert.NoError(t, err)
}
