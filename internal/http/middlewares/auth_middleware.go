package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workpadhq/workpad/internal/domain/user"
)

// UserResolver is the slice of auth.Resolver the middleware needs; tests
// fake it.
type UserResolver interface {
	ResolveUser(ctx context.Context, r *http.Request) (user.User, bool)
}

type AuthMiddleware struct {
	resolver UserResolver
}

func NewAuthMiddleware(resolver UserResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth resolves the caller via session cookie or bearer token and
// aborts with 401 before the handler runs any side effects.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := m.resolver.ResolveUser(c.Request.Context(), c.Request)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Please sign in",
				},
			})
			return
		}

		c.Set(ctxUserKey, u)

		c.Next()
	}
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)

	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}
