package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workpadhq/workpad/internal/auth"
)

// RequireRole runs after RequireAuth. Admin satisfies every role check.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Missing identity context",
				},
			})
			return
		}

		if !auth.RequireRole(u, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}
		c.Next()
	}
}
