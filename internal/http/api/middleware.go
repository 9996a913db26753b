package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/config"
	"github.com/estimo-app/estimo/internal/http/api/handlers"
	"github.com/estimo-app/estimo/internal/ratelimit"
	"github.com/estimo-app/estimo/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// authMiddleware validates bearer JWTs and stores the acting user id on the
// request context.
func authMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		handlers.SetUserID(c, claims.UserID)
		c.Next()
	}
}

// requestIDMiddleware propagates an inbound X-Request-ID or generates one.
// Inbound values with control or non-ASCII bytes are discarded.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := sanitizeRequestID(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func sanitizeRequestID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > 128 {
		return ""
	}
	for i := 0; i < len(value); i++ {
		b := value[i]
		if b < 0x21 || b > 0x7e {
			return ""
		}
	}
	return value
}

// rateLimitMiddleware applies the fixed-window limiter. Requests are keyed
// per user when the auth middleware already ran, per client IP otherwise.
// A failing limiter backend lets the request through.
func rateLimitMiddleware(limiter ratelimit.Limiter, clk clock.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.UserKey(handlers.GetUserID(c))
		if key == "" {
			key = ratelimit.IPKey(c.ClientIP())
		}

		res, errAllow := limiter.Allow(c.Request.Context(), key, clk.Now())
		if errAllow != nil {
			log.WithError(errAllow).Warn("rate limit check failed, allowing request")
			c.Next()
			return
		}
		if !res.Allowed {
			c.Header("Retry-After", strconv.FormatInt(int64(res.Reset.Sub(clk.Now()).Seconds())+1, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// corsMiddleware answers preflight requests and stamps CORS headers for
// allowed origins.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		if origin != "" {
			_, ok := allowed[origin]
			if !ok {
				_, ok = allowed["*"]
			}
			if ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
				c.Header("Access-Control-Expose-Headers", requestIDHeader)
				c.Header("Vary", "Origin")
			}
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
