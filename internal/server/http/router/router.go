package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/polkiloo/schoolpay/internal/server/http/handlers"
	"github.com/polkiloo/schoolpay/internal/server/http/middleware"
)

// Options carries everything the router needs. NewRelicApp and Idempotency
// are optional.
type Options struct {
	Facade         handlers.FeeFacade
	Logger         *slog.Logger
	Currency       string
	AllowedOrigins []string
	NewRelicApp    *newrelic.Application
	Idempotency    middleware.IdempotencyStore
}

// Setup configures gin router with handlers and middleware.
func Setup(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	if opts.NewRelicApp != nil {
		engine.Use(nrgin.Middleware(opts.NewRelicApp))
	}
	engine.Use(middleware.RequestLogger(opts.Logger))
	engine.Use(middleware.CORS(opts.AllowedOrigins))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(opts.Facade)
	transactionHandler := handlers.NewTransactionHandler(opts.Facade, opts.Currency)
	paymentHandler := handlers.NewPaymentHandler(opts.Facade)
	healthHandler := handlers.NewHealthHandler(opts.Facade)

	engine.GET("/health", healthHandler.Check)

	api := engine.Group("/api")
	api.GET("/health", healthHandler.Check)
	api.POST("/webhook", paymentHandler.Webhook)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(opts.Facade))
	orders.GET("/transactions", transactionHandler.List)
	orders.GET("/transactions/export", transactionHandler.Export)
	orders.GET("/stats", transactionHandler.Stats)
	orders.GET("/school/:schoolId", transactionHandler.BySchool)
	orders.GET("/status/:custom_order_id", transactionHandler.Status)
	orders.GET("/status/:custom_order_id/receipt", transactionHandler.Receipt)

	payments := api.Group("/payments")
	if opts.Idempotency != nil {
		payments.POST("/create-payment", middleware.Idempotency(opts.Idempotency, opts.Logger), paymentHandler.Create)
	} else {
		payments.POST("/create-payment", paymentHandler.Create)
	}
	payments.GET("/status/:order_id", paymentHandler.Status)

	return engine
}
