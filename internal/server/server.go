package server

import (
	"context"
	"net/http"

	"boompay/internal/admin"
	"boompay/internal/auth"
	"boompay/internal/catalog"
	"boompay/internal/chat"
	"boompay/internal/config"
	"boompay/internal/coupon"
	"boompay/internal/news"
	"boompay/internal/notify"
	"boompay/internal/order"
	"boompay/internal/payment"
	"boompay/internal/recharge"
	"boompay/internal/refund"
	"boompay/internal/settings"
	"boompay/internal/storage"
	"boompay/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	hub    *notify.Hub
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, hub *notify.Hub, store *storage.Store) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	tokenRepo := token.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	tokenHandler := token.NewHandlerWithRepo(tokenRepo)
	catalogHandler := catalog.NewHandler(db)
	orderHandler := order.NewHandler(db, hub)
	couponHandler := coupon.NewHandler(db)
	rechargeHandler := recharge.NewHandler(db, store, hub)
	refundHandler := refund.NewHandler(db)
	chatHandler := chat.NewHandler(db, hub)
	paymentHandler := payment.NewHandler(db)
	settingsHandler := settings.NewHandler(db)
	newsHandler := news.NewHandler(db)
	adminHandler := admin.NewHandler(db, cfg.JWTSecret)
	notifyHandler := notify.NewHandler(hub)

	// Public storefront endpoints. Recharge submission stays public so a
	// first-time customer can fund a token they do not have yet.
	router.GET("/catalog", catalogHandler.ListCatalog)
	router.GET("/payment-methods", paymentHandler.ListVisible)
	router.GET("/settings/:key", settingsHandler.GetPublic)
	router.GET("/news", newsHandler.ListActive)
	router.POST("/tokens/verify", tokenHandler.Verify)
	router.POST("/recharges", rechargeHandler.Submit)
	router.Static(cfg.UploadBaseURL, store.Dir())

	// Customer endpoints, authenticated by the bearer credential.
	customer := router.Group("/")
	customer.Use(token.Middleware(tokenRepo))
	{
		customer.POST("/orders", orderHandler.Purchase)
		customer.GET("/orders", orderHandler.ListMine)
		customer.GET("/orders/:orderID", orderHandler.GetMine)
		customer.POST("/orders/:orderID/cancel", orderHandler.Cancel)
		customer.GET("/orders/:orderID/messages", chatHandler.ListMessages)
		customer.POST("/orders/:orderID/messages", chatHandler.SendMessage)
		customer.POST("/orders/:orderID/messages/read", chatHandler.MarkRead)
		customer.GET("/orders/:orderID/messages/unread", chatHandler.Unread)
		customer.GET("/orders/:orderID/events", notifyHandler.StreamOrder)
		customer.POST("/coupons/preview", couponHandler.Preview)
		customer.GET("/recharges", rechargeHandler.ListMine)
		customer.POST("/refunds", refundHandler.Submit)
		customer.GET("/refunds", refundHandler.ListMine)
	}

	router.POST("/admin/auth/login", adminHandler.Login)
	router.POST("/admin/auth/refresh", adminHandler.Refresh)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	adminGroup := router.Group("/admin")
	adminGroup.Use(authMiddleware)
	{
		adminGroup.GET("/events", notifyHandler.StreamAdmin)

		orders := adminGroup.Group("/orders", admin.RequirePermission(adminRepo, admin.PermOrders))
		{
			orders.GET("", orderHandler.List)
			orders.GET("/:orderID", orderHandler.Get)
			orders.PATCH("/:orderID/status", orderHandler.Transition)
			orders.GET("/:orderID/messages", chatHandler.AdminListMessages)
			orders.POST("/:orderID/messages", chatHandler.AdminSendMessage)
			orders.POST("/:orderID/messages/read", chatHandler.AdminMarkRead)
			orders.GET("/:orderID/messages/unread", chatHandler.AdminUnread)
		}

		recharges := adminGroup.Group("/recharges", admin.RequirePermission(adminRepo, admin.PermRecharges))
		{
			recharges.GET("", rechargeHandler.List)
			recharges.POST("/:rechargeID/approve", rechargeHandler.Approve)
			recharges.POST("/:rechargeID/reject", rechargeHandler.Reject)
		}

		refunds := adminGroup.Group("/refunds", admin.RequirePermission(adminRepo, admin.PermRefunds))
		{
			refunds.GET("", refundHandler.List)
			refunds.POST("/:refundID/approve", refundHandler.Approve)
			refunds.POST("/:refundID/reject", refundHandler.Reject)
		}

		products := adminGroup.Group("/products", admin.RequirePermission(adminRepo, admin.PermProducts))
		{
			products.GET("", catalogHandler.ListProducts)
			products.POST("", catalogHandler.CreateProduct)
			products.PUT("/:productID", catalogHandler.UpdateProduct)
			products.DELETE("/:productID", catalogHandler.DeleteProduct)
			products.POST("/:productID/options", catalogHandler.CreateOption)
		}

		options := adminGroup.Group("/options", admin.RequirePermission(adminRepo, admin.PermProducts))
		{
			options.PUT("/:optionID", catalogHandler.UpdateOption)
			options.DELETE("/:optionID", catalogHandler.DeleteOption)
			options.POST("/:optionID/stock", catalogHandler.AddStock)
			options.GET("/:optionID/stock", catalogHandler.ListStock)
		}
		adminGroup.DELETE("/stock/:stockID",
			admin.RequirePermission(adminRepo, admin.PermProducts), catalogHandler.DeleteStockItem)

		tokens := adminGroup.Group("/tokens", admin.RequirePermission(adminRepo, admin.PermTokens))
		{
			tokens.GET("", tokenHandler.List)
			tokens.POST("", tokenHandler.Create)
			tokens.POST("/:tokenID/balance", tokenHandler.AdjustBalance)
			tokens.POST("/:tokenID/blocked", tokenHandler.SetBlocked)
			tokens.DELETE("/:tokenID", tokenHandler.Delete)
		}

		coupons := adminGroup.Group("/coupons", admin.RequirePermission(adminRepo, admin.PermCoupons))
		{
			coupons.GET("", couponHandler.List)
			coupons.POST("", couponHandler.Create)
			coupons.PUT("/:couponID", couponHandler.Update)
			coupons.DELETE("/:couponID", couponHandler.Delete)
		}

		payments := adminGroup.Group("/payment-methods", admin.RequirePermission(adminRepo, admin.PermPayments))
		{
			payments.GET("", paymentHandler.ListAll)
			payments.POST("", paymentHandler.Create)
			payments.PUT("/:methodID", paymentHandler.Update)
			payments.DELETE("/:methodID", paymentHandler.Delete)
		}

		newsGroup := adminGroup.Group("/news", admin.RequirePermission(adminRepo, admin.PermNews))
		{
			newsGroup.GET("", newsHandler.ListAll)
			newsGroup.POST("", newsHandler.Create)
			newsGroup.PUT("/:newsID", newsHandler.Update)
			newsGroup.POST("/:newsID/active", newsHandler.SetActive)
			newsGroup.DELETE("/:newsID", newsHandler.Delete)
		}

		settingsGroup := adminGroup.Group("/settings", admin.RequirePermission(adminRepo, admin.PermSettings))
		{
			settingsGroup.GET("", settingsHandler.List)
			settingsGroup.PUT("/:key", settingsHandler.Upsert)
		}

		users := adminGroup.Group("/users", auth.RequireRole(admin.RoleAdmin))
		{
			users.GET("", adminHandler.List)
			users.POST("", adminHandler.Create)
			users.PUT("/:adminID/permissions", adminHandler.SetPermissions)
			users.DELETE("/:adminID", adminHandler.Delete)
		}
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		hub:    hub,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
