// Package vnpay builds signed VNPay payment URLs and verifies return calls.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	version       = "2.1.0"
	command       = "pay"
	currency      = "VND"
	locale        = "vn"
	orderType     = "other"
	dateLayout    = "20060102150405"
	successCode   = "00"
	hashParam     = "vnp_SecureHash"
	hashTypeParam = "vnp_SecureHashType"
)

var ErrInvalidSignature = errors.New("vnpay: invalid signature")

var vietnam = time.FixedZone("ICT", 7*60*60)

type Gateway struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

type PaymentRequest struct {
	OrderCode string
	Amount    decimal.Decimal
	Info      string
	ClientIP  string
	CreatedAt time.Time
}

type ReturnResult struct {
	OrderCode     string
	Success       bool
	ResponseCode  string
	TransactionNo string
	Amount        decimal.Decimal
}

func (g *Gateway) BuildPaymentURL(req PaymentRequest) (string, error) {
	if g.TmnCode == "" || g.HashSecret == "" {
		return "", errors.New("vnpay: gateway not configured")
	}
	created := req.CreatedAt.In(vietnam)
	params := url.Values{}
	params.Set("vnp_Version", version)
	params.Set("vnp_Command", command)
	params.Set("vnp_TmnCode", g.TmnCode)
	params.Set("vnp_Amount", req.Amount.Mul(decimal.NewFromInt(100)).Round(0).String())
	params.Set("vnp_CurrCode", currency)
	params.Set("vnp_TxnRef", req.OrderCode)
	params.Set("vnp_OrderInfo", req.Info)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_Locale", locale)
	params.Set("vnp_ReturnUrl", g.ReturnURL)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_CreateDate", created.Format(dateLayout))
	params.Set("vnp_ExpireDate", created.Add(15*time.Minute).Format(dateLayout))

	query := canonicalQuery(params)
	return g.PayURL + "?" + query + "&" + hashParam + "=" + g.sign(query), nil
}

// VerifyReturn checks the signature of the parameters VNPay appends to the
// return URL.
func (g *Gateway) VerifyReturn(values url.Values) (ReturnResult, error) {
	received := values.Get(hashParam)
	if received == "" {
		return ReturnResult{}, ErrInvalidSignature
	}

	params := url.Values{}
	for k, v := range values {
		if k == hashParam || k == hashTypeParam || !strings.HasPrefix(k, "vnp_") {
			continue
		}
		params[k] = v
	}
	expected := g.sign(canonicalQuery(params))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return ReturnResult{}, ErrInvalidSignature
	}

	amount, _ := decimal.NewFromString(values.Get("vnp_Amount"))
	code := values.Get("vnp_ResponseCode")
	return ReturnResult{
		OrderCode:     values.Get("vnp_TxnRef"),
		Success:       code == successCode && values.Get("vnp_TransactionStatus") != "02",
		ResponseCode:  code,
		TransactionNo: values.Get("vnp_TransactionNo"),
		Amount:        amount.Div(decimal.NewFromInt(100)),
	}, nil
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalQuery encodes non-empty params sorted by key, the form VNPay signs.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if params.Get(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}
