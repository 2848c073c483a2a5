package vnpay

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *Gateway {
	return &Gateway{
		TmnCode:    "TESTTMN",
		HashSecret: "SECRETKEY",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/orders/vnpay-callback",
	}
}

func TestBuildPaymentURL(t *testing.T) {
	g := testGateway()
	raw, err := g.BuildPaymentURL(PaymentRequest{
		OrderCode: "20251015-abc",
		Amount:    decimal.NewFromInt(530000),
		Info:      "Thanh toan don hang 20251015-abc",
		ClientIP:  "127.0.0.1",
		CreatedAt: time.Date(2025, 10, 15, 3, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "53000000", q.Get("vnp_Amount"))
	assert.Equal(t, "20251015-abc", q.Get("vnp_TxnRef"))
	assert.Equal(t, "20251015100000", q.Get("vnp_CreateDate"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))
}

func TestBuildPaymentURLRequiresConfig(t *testing.T) {
	_, err := (&Gateway{}).BuildPaymentURL(PaymentRequest{})
	assert.Error(t, err)
}

func signedReturn(g *Gateway, code string) url.Values {
	v := url.Values{}
	v.Set("vnp_TxnRef", "ORDER-1")
	v.Set("vnp_Amount", "53000000")
	v.Set("vnp_ResponseCode", code)
	v.Set("vnp_TransactionStatus", code)
	v.Set("vnp_TransactionNo", "14000001")
	v.Set("vnp_SecureHash", g.sign(canonicalQuery(v)))
	return v
}

func TestVerifyReturn(t *testing.T) {
	g := testGateway()

	res, err := g.VerifyReturn(signedReturn(g, "00"))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ORDER-1", res.OrderCode)
	assert.True(t, decimal.NewFromInt(530000).Equal(res.Amount))

	res, err = g.VerifyReturn(signedReturn(g, "24"))
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestVerifyReturnRejectsTampering(t *testing.T) {
	g := testGateway()
	v := signedReturn(g, "00")
	v.Set("vnp_Amount", "100")

	_, err := g.VerifyReturn(v)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	v.Del("vnp_SecureHash")
	_, err = g.VerifyReturn(v)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
