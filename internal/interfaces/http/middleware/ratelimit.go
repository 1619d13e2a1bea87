package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quelyos/backend/internal/infrastructure/ratelimit"
	"github.com/quelyos/backend/internal/interfaces/http/dto"
)

// RateLimit enforces one limiter class on a route group. The caller key
// is the user id for authenticated requests, the client IP otherwise;
// every response carries the X-RateLimit-* headers.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		result := limiter.Allow(c.Request.Context(), class, id.Key())

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			h.Set("Retry-After", strconv.Itoa(int(result.RetryAfter / time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewRateLimitedResponse("Trop de requêtes, veuillez réessayer plus tard", int(result.RetryAfter / time.Second)))
			return
		}
		c.Next()
	}
}

// ChatRateLimit picks the chat limiter class per request: authenticated
// callers get the larger budget.
func ChatRateLimit(limiter *ratelimit.Limiter, classes ratelimit.Classes) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		class := classes.ChatAnonymous
		if id.IsAuthenticated() {
			class = classes.ChatAuthenticated
		}

		result := limiter.Allow(c.Request.Context(), class, id.Key())

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			h.Set("Retry-After", strconv.Itoa(int(result.RetryAfter / time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.NewRateLimitedResponse("Trop de requêtes, veuillez réessayer plus tard", int(result.RetryAfter / time.Second)))
			return
		}
		c.Next()
	}
}
