// Package app wires configuration, services and the HTTP router together.
package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-cosmetics/api"
	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/config"
	"go-cosmetics/internal/payment/vnpay"
	"go-cosmetics/internal/services"
)

type App struct {
	Config *config.Config
	Log    *logrus.Logger

	Products       *services.ProductService
	Categories     *services.CategoryService
	Brands         *services.BrandService
	Carts          *services.CartService
	Orders         *services.OrderService
	Users          *services.UserService
	PaymentMethods *services.PaymentMethodService
	Wishlist       *services.WishlistService
	Stats          *services.StatsService
	Chat           *services.ChatService
	Images         *services.ImageStore
	Tokens         *auth.TokenIssuer

	Router *gin.Engine
}

// New builds the in-memory services and the router. With SeedData set the
// catalogue gets sample products; the admin account is always ensured.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	images, err := services.NewImageStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:         cfg,
		Log:            log,
		Categories:     services.NewCategoryService(),
		Brands:         services.NewBrandService(),
		Users:          services.NewUserService(),
		PaymentMethods: services.NewPaymentMethodService(),
		Images:         images,
		Tokens:         auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
	}
	a.Products = services.NewProductService(a.Categories, a.Brands)
	a.Carts = services.NewCartService(a.Products)
	a.Wishlist = services.NewWishlistService(a.Products)
	a.Chat = services.NewChatService(a.Products)

	// A typed nil *vnpay.Gateway would defeat the service's nil check.
	var gateway services.PaymentGateway
	if cfg.VNPayEnabled() {
		gateway = &vnpay.Gateway{
			TmnCode:    cfg.VNPayTmnCode,
			HashSecret: cfg.VNPayHashSecret,
			PayURL:     cfg.VNPayURL,
			ReturnURL:  cfg.VNPayReturnURL,
		}
	} else {
		log.Warn("VNPay is not configured, redirect payments are disabled")
	}
	a.Orders = services.NewOrderService(a.Products, a.Carts, a.PaymentMethods, gateway, log)
	a.Stats = services.NewStatsService(a.Orders, a.Products, a.Categories, a.Users)

	if cfg.SeedData {
		a.Products.InitSampleData()
		log.WithField("products", a.Products.Count()).Info("sample catalogue loaded")
	}
	admin, err := a.Users.SeedAdmin(cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	log.WithField("email", admin.Email).Info("admin account ready")

	var google auth.GoogleProvider
	if cfg.GoogleEnabled() {
		google = auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	}

	a.Router = api.NewRouter(api.Deps{
		Products:       a.Products,
		Categories:     a.Categories,
		Brands:         a.Brands,
		Carts:          a.Carts,
		Orders:         a.Orders,
		Users:          a.Users,
		PaymentMethods: a.PaymentMethods,
		Wishlist:       a.Wishlist,
		Stats:          a.Stats,
		Chat:           a.Chat,
		Images:         a.Images,
		Tokens:         a.Tokens,
		Google:         google,
		States:         auth.NewStateStore(10 * time.Minute),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		Log:            log,
		FrontendURL:    cfg.FrontendURL,
		CORSOrigins:    cfg.CORSOrigin,
		Production:     cfg.IsProduction(),
	})
	return a, nil
}
