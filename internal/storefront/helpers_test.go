package storefront_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"go-cosmetics/internal/app"
	"go-cosmetics/internal/config"
	"go-cosmetics/internal/logging"
	"go-cosmetics/internal/models"
	"go-cosmetics/internal/storefront"
)

const (
	adminEmail    = "admin@test.local"
	adminPassword = "admin123"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// backend is the real API behind an httptest server, counting the requests
// that reach it.
type backend struct {
	*httptest.Server
	requests atomic.Int64
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	cfg := &config.Config{
		Env:             "test",
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		UploadDir:       t.TempDir(),
		FrontendURL:     "http://shop.test",
		CORSOrigin:      "*",
		SeedData:        true,
		AdminEmail:      adminEmail,
		AdminPassword:   adminPassword,
		AuthRateLimit:   1000,
		AuthRateBurst:   1000,
		VNPayTmnCode:    "TESTTMN",
		VNPayHashSecret: "SECRETKEY",
		VNPayURL:        "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		VNPayReturnURL:  "http://localhost/api/orders/vnpay-callback",
	}
	a, err := app.New(cfg, logging.Discard())
	require.NoError(t, err)

	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.requests.Add(1)
		a.Router.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func newClient(t *testing.T, b *backend, onUnauthorized func()) *storefront.Client {
	t.Helper()
	c, err := storefront.New(storefront.Config{
		BaseURL:        b.URL,
		Store:          storefront.NewStore(storefront.NewMemoryStorage()),
		OnUnauthorized: onUnauthorized,
	})
	require.NoError(t, err)
	return c
}

func signIn(t *testing.T, c *storefront.Client, email, password string) *storefront.Session {
	t.Helper()
	s := storefront.NewSession(c)
	_, err := s.Login(context.Background(), email, password)
	require.NoError(t, err)
	return s
}

func signUpCustomer(t *testing.T, c *storefront.Client, email string) *storefront.Session {
	t.Helper()
	s := storefront.NewSession(c)
	_, err := s.Register(context.Background(), models.RegisterRequest{
		Username: strings.Split(email, "@")[0],
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)
	_, err = s.Login(context.Background(), email, "secret1")
	require.NoError(t, err)
	return s
}
