package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workpadhq/workpad/internal/ratelimit"
)

// LoginRateLimiter rejects login attempts from a client IP that is locked
// out. Failed attempts are recorded by the login handler itself, so this
// only gates; the counter store is shared with it.
func LoginRateLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientIPKey(c)

		res := limiter.Allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))

		if !res.Allowed {
			retryAfter := int(res.RetryAfter.Seconds())

			if retryAfter < 0 {
				retryAfter = 0
			}

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many login attempts. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		c.Next()
	}
}

// ClientIPKey derives the rate-limit key for unauthenticated endpoints.
func ClientIPKey(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
