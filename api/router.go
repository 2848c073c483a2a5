package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-cosmetics/api/handlers"
	"go-cosmetics/api/middleware"
	"go-cosmetics/internal/auth"
	"go-cosmetics/internal/logging"
	"go-cosmetics/internal/metrics"
	"go-cosmetics/internal/services"
)

// Deps is everything the HTTP layer needs. Google may be nil.
type Deps struct {
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

	Tokens      *auth.TokenIssuer
	Google      auth.GoogleProvider
	States      *auth.StateStore
	AuthLimiter *middleware.IPRateLimiter

	Log         logrus.FieldLogger
	FrontendURL string
	CORSOrigins string
	Production  bool
}

func NewRouter(d Deps) *gin.Engine {
	if d.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.States == nil {
		d.States = auth.NewStateStore(10 * time.Minute)
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20
	router.Use(gin.Recovery())
	router.Use(logging.Middleware(d.Log))
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(d.CORSOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	productHandler := handlers.NewProductHandler(d.Products, d.Images, d.Log)
	categoryHandler := handlers.NewCategoryHandler(d.Categories)
	brandHandler := handlers.NewBrandHandler(d.Brands)
	cartHandler := handlers.NewCartHandler(d.Carts)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.FrontendURL)
	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Google, d.States, d.FrontendURL, d.Log)
	userHandler := handlers.NewUserHandler(d.Users)
	paymentHandler := handlers.NewPaymentMethodHandler(d.PaymentMethods)
	wishlistHandler := handlers.NewWishlistHandler(d.Wishlist)
	statsHandler := handlers.NewStatsHandler(d.Stats)
	chatHandler := handlers.NewChatHandler(d.Chat, d.Log)

	authed := middleware.Authenticate(d.Tokens)
	requireAdmin := middleware.RequireAdmin()
	adminOnly := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return []gin.HandlerFunc{authed, requireAdmin, h}
	}

	if d.Images != nil {
		router.Static(d.Images.PublicPrefix, d.Images.Dir)
	}
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.GET("/health", productHandler.HealthCheck)

		authRoutes := api.Group("/auth")
		{
			limited := authRoutes.Group("")
			if d.AuthLimiter != nil {
				limited.Use(d.AuthLimiter.Middleware())
			}
			limited.POST("/register", authHandler.Register)
			limited.POST("/login", authHandler.Login)
			limited.POST("/google/exchange", authHandler.GoogleExchange)

			authRoutes.GET("/profile", authed, authHandler.Profile)
			authRoutes.PUT("/profile", authed, authHandler.UpdateProfile)
			authRoutes.PUT("/password", authed, authHandler.ChangePassword)
			authRoutes.GET("/google/url", authHandler.GoogleURL)
			authRoutes.GET("/google/callback", authHandler.GoogleCallback)
		}

		products := api.Group("/products")
		{
			products.GET("", productHandler.GetAllProducts)
			products.GET("/search", productHandler.SearchProducts)
			products.GET("/filter", productHandler.FilterProducts)
			products.GET("/all", adminOnly(productHandler.ListAllProducts)...)
			products.GET("/export", adminOnly(productHandler.ExportProducts)...)
			products.GET("/:id", productHandler.GetProductByID)
			products.POST("", adminOnly(productHandler.CreateProduct)...)
			products.PUT("/:id", adminOnly(productHandler.UpdateProduct)...)
			products.DELETE("/:id", adminOnly(productHandler.DeleteProduct)...)
			products.DELETE("/:id/images/:imageId", adminOnly(productHandler.DeleteImage)...)
			products.PUT("/:id/images/:imageId/primary", adminOnly(productHandler.SetPrimaryImage)...)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("", adminOnly(categoryHandler.Create)...)
			categories.PUT("/:id", adminOnly(categoryHandler.Update)...)
			categories.DELETE("/:id", adminOnly(categoryHandler.Delete)...)
		}

		brands := api.Group("/brands")
		{
			brands.GET("", brandHandler.List)
			brands.GET("/paged", brandHandler.ListPaged)
			brands.GET("/:id", brandHandler.Get)
			brands.POST("", adminOnly(brandHandler.Create)...)
			brands.PUT("/:id", adminOnly(brandHandler.Update)...)
			brands.DELETE("/:id", adminOnly(brandHandler.Delete)...)
		}

		cart := api.Group("/cart", authed)
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("", cartHandler.AddToCart)
			cart.PUT("/:id", cartHandler.UpdateCartItem)
			cart.DELETE("/:id", cartHandler.RemoveCartItem)
			cart.DELETE("", cartHandler.ClearCart)
		}

		orders := api.Group("/orders")
		{
			orders.GET("/vnpay-callback", orderHandler.VNPayCallback)
			orders.POST("/checkout", authed, orderHandler.Checkout)
			orders.GET("/my", authed, orderHandler.MyOrders)
			orders.GET("/:id", authed, orderHandler.GetOrder)
			orders.PUT("/:id/cancel", authed, orderHandler.CancelOrder)
			orders.GET("", adminOnly(orderHandler.ListOrders)...)
			orders.PUT("/:id/status", adminOnly(orderHandler.UpdateStatus)...)
			orders.PUT("/:id/payment-status", adminOnly(orderHandler.UpdatePaymentStatus)...)
		}

		payments := api.Group("/payment-methods")
		{
			payments.GET("", paymentHandler.List)
			payments.POST("", adminOnly(paymentHandler.Create)...)
			payments.PUT("/:id/active", adminOnly(paymentHandler.SetActive)...)
		}

		users := api.Group("/users", authed, requireAdmin)
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}

		wishlist := api.Group("/wishlist", authed)
		{
			wishlist.GET("", wishlistHandler.List)
			wishlist.POST("/:productId", wishlistHandler.Add)
			wishlist.DELETE("/:productId", wishlistHandler.Remove)
		}

		stats := api.Group("/statistics", authed, requireAdmin)
		{
			stats.GET("/revenue", statsHandler.Revenue)
			stats.GET("/best-sellers", statsHandler.BestSellers)
			stats.GET("/dashboard", statsHandler.Dashboard)
			stats.GET("/sales-chart", statsHandler.SalesChart)
			stats.GET("/category-chart", statsHandler.CategoryChart)
		}

		chat := api.Group("/chat")
		{
			chat.GET("/ws", chatHandler.WebSocket)
			chat.POST("/summarize", chatHandler.Summarize)
		}
	}

	return router
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
