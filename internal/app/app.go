// Package app assembles the service: configuration, database, payment
// provider, entitlement evaluator, PDF renderer, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/config"
	"github.com/estimo-app/estimo/internal/db"
	"github.com/estimo-app/estimo/internal/entitlement"
	"github.com/estimo-app/estimo/internal/http/api"
	"github.com/estimo-app/estimo/internal/payments"
	"github.com/estimo-app/estimo/internal/pdf"
	"github.com/estimo-app/estimo/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations.
func Migrate(cfg *config.Config) error {
	conn, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the API server and blocks until ctx is canceled or the
// server fails.
func RunServer(ctx context.Context, cfg *config.Config, port int) error {
	conn, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	clk := clock.System{}

	limiter, closeLimiter := buildLimiter(cfg.RateLimit)
	defer closeLimiter()

	stripeClient := payments.NewStripeClient(cfg.Stripe.APIKey)
	orchestrator := payments.NewOrchestrator(conn, stripeClient, clk, cfg.Stripe.Currency, cfg.Stripe.FrontendURL)
	evaluator := entitlement.NewEvaluator(conn, clk)

	renderer := pdf.NewChromeRenderer(pdf.Options{
		RemoteURL: cfg.PDF.ChromeURL,
		NoSandbox: cfg.PDF.NoSandbox,
	})
	defer func() {
		if errClose := renderer.Close(); errClose != nil {
			log.WithError(errClose).Warn("close pdf renderer")
		}
	}()

	engine := gin.New()
	engine.Use(gin.Recovery())
	api.RegisterRoutes(engine, api.Deps{
		DB:           conn,
		Config:       cfg,
		Clock:        clk,
		Evaluator:    evaluator,
		Orchestrator: orchestrator,
		Renderer:     renderer,
		Limiter:      limiter,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return fmt.Errorf("shutdown: %w", errShutdown)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// buildLimiter returns the Redis limiter when an address is configured, the
// in-memory limiter otherwise. The returned func releases the Redis client.
func buildLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, func()) {
	window := ratelimit.Window{Limit: cfg.Limit, Seconds: cfg.WindowSeconds}
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryLimiter(window), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	log.Infof("rate limiting via redis at %s", cfg.RedisAddr)
	return ratelimit.NewRedisLimiter(client, cfg.RedisPrefix, window), func() {
		if errClose := client.Close(); errClose != nil {
			log.WithError(errClose).Warn("close redis client")
		}
	}
}
