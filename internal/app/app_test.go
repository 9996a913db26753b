package app

import (
	"testing"

	"github.com/estimo-app/estimo/internal/config"
	"github.com/estimo-app/estimo/internal/ratelimit"
)

func TestBuildLimiterMemoryByDefault(t *testing.T) {
	limiter, closeLimiter := buildLimiter(config.RateLimitConfig{Limit: 50, WindowSeconds: 10})
	defer closeLimiter()

	if _, ok := limiter.(*ratelimit.MemoryLimiter); !ok {
		t.Fatalf("expected memory limiter, got %T", limiter)
	}
}

func TestBuildLimiterRedisWhenConfigured(t *testing.T) {
	limiter, closeLimiter := buildLimiter(config.RateLimitConfig{
		Limit:         50,
		WindowSeconds: 10,
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "estimo:rl",
	})
	defer closeLimiter()

	if _, ok := limiter.(*ratelimit.RedisLimiter); !ok {
		t.Fatalf("expected redis limiter, got %T", limiter)
	}
}
