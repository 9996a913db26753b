// Package api registers the HTTP surface: middleware chain, public auth
// routes, and the authenticated quoting/billing routes.
package api

import (
	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/config"
	"github.com/estimo-app/estimo/internal/entitlement"
	"github.com/estimo-app/estimo/internal/http/api/handlers"
	"github.com/estimo-app/estimo/internal/payments"
	"github.com/estimo-app/estimo/internal/pdf"
	"github.com/estimo-app/estimo/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries the collaborators the routes need.
type Deps struct {
	DB           *gorm.DB
	Config       *config.Config
	Clock        clock.Clock
	Evaluator    *entitlement.Evaluator
	Orchestrator *payments.Orchestrator
	Renderer     pdf.Renderer
	Limiter      ratelimit.Limiter
}

// RegisterRoutes registers middleware, routes, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	r.Use(requestIDMiddleware())
	r.Use(corsMiddleware(deps.Config.AllowedOrigins))

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	limited := rateLimitMiddleware(deps.Limiter, deps.Clock)

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Config.JWT)
	authGroup := r.Group("/auth")
	authGroup.Use(limited)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	authed := r.Group("")
	authed.Use(authMiddleware(deps.Config.JWT))
	authed.Use(limited)

	clientHandler := handlers.NewClientHandler(deps.DB)
	authed.POST("/clients", clientHandler.Create)
	authed.GET("/clients", clientHandler.List)
	authed.GET("/clients/:id", clientHandler.Get)

	quoteHandler := handlers.NewQuoteHandler(deps.DB, deps.Evaluator, deps.Orchestrator, deps.Renderer, deps.Clock)
	authed.POST("/quotes", quoteHandler.Create)
	authed.GET("/quotes/:id", quoteHandler.Get)
	authed.GET("/quotes/:id/pdf", quoteHandler.PDF)
	authed.POST("/quotes/:id/paylink", quoteHandler.CreatePayLink)
	authed.POST("/quotes/confirm", quoteHandler.ConfirmPayment)

	billingHandler := handlers.NewBillingHandler(deps.Orchestrator)
	authed.POST("/billing/checkout", billingHandler.Checkout)
	authed.POST("/billing/confirm", billingHandler.Confirm)
	authed.GET("/billing/success", billingHandler.Success)
	authed.GET("/billing/cancel", billingHandler.Cancel)
}
