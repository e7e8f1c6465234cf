package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/ialim/orderflow/internal/server/http/handlers"
	"github.com/ialim/orderflow/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.OrderflowFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	quotationHandler := handlers.NewQuotationHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	overrideHandler := handlers.NewOverrideHandler(facade)
	fulfilmentHandler := handlers.NewFulfilmentHandler(facade)
	auditHandler := handlers.NewAuditHandler(facade)

	api := engine.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	quotations := authed.Group("/quotations")
	quotations.POST("", quotationHandler.Create)
	quotations.GET("/:id", quotationHandler.Get)
	quotations.POST("/:id/share", quotationHandler.Share)
	quotations.PUT("/:id/items", quotationHandler.Edit)
	quotations.POST("/:id/approve", quotationHandler.Approve)
	quotations.POST("/:id/decline", quotationHandler.Decline)
	quotations.POST("/:id/withdraw", quotationHandler.Withdraw)
	quotations.POST("/:id/extend", quotationHandler.Extend)
	quotations.GET("/:id/order", quotationHandler.Order)

	orders := authed.Group("/orders")
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/payment-method", orderHandler.SetPaymentMethod)
	orders.POST("/:id/payments", orderHandler.RecordPayment)
	orders.POST("/:id/payments/retry", orderHandler.RetryPayment)
	orders.POST("/:id/cancel", orderHandler.Cancel)
	orders.POST("/:id/overrides", overrideHandler.Request)
	orders.GET("/:id/overrides", overrideHandler.Active)
	orders.GET("/:id/fulfilment", fulfilmentHandler.Get)
	orders.POST("/:id/fulfilment/events", fulfilmentHandler.Fire)
	orders.POST("/:id/fulfilment/rider", fulfilmentHandler.AssignRider)

	overrides := authed.Group("/overrides")
	overrides.POST("/:id/approve", overrideHandler.Approve)
	overrides.POST("/:id/deny", overrideHandler.Deny)
	overrides.POST("/:id/revoke", overrideHandler.Revoke)

	authed.GET("/audit/:entity/:id", auditHandler.History)

	return engine
}
