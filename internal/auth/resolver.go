package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/workpadhq/workpad/internal/domain/user"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "sid"

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Strategy extracts an identity from a request. A miss is not an error:
// absent, malformed or expired credentials all resolve to ok=false so the
// next strategy gets a chance.
type Strategy interface {
	Resolve(ctx context.Context, r *http.Request) (user.User, bool)
}

// Resolver runs credential strategies in order; the first hit wins. The
// session cookie is always consulted before the legacy bearer token.
type Resolver struct {
	strategies []Strategy
}

func NewResolver(sessions *SessionManager, tokens *Manager, users UserLoader) *Resolver {
	return &Resolver{
		strategies: []Strategy{
			&sessionCookieStrategy{sessions: sessions, users: users},
			&bearerTokenStrategy{tokens: tokens, users: users},
		},
	}
}

// ResolveUser maps a request to a user, password hash stripped. ok=false
// means unauthenticated; the caller owns the HTTP status.
func (r *Resolver) ResolveUser(ctx context.Context, req *http.Request) (user.User, bool) {
	for _, s := range r.strategies {
		if u, ok := s.Resolve(ctx, req); ok {
			return u.Sanitized(), true
		}
	}

	return user.User{}, false
}

// RequireRole reports whether u may act as role. Admin passes every check.
func RequireRole(u user.User, role string) bool {
	if u.Role == "" {
		return false
	}

	return u.Role == role || u.Role == user.RoleAdmin
}

type sessionCookieStrategy struct {
	sessions *SessionManager
	users    UserLoader
}

func (s *sessionCookieStrategy) Resolve(ctx context.Context, r *http.Request) (user.User, bool) {
	c, err := r.Cookie(SessionCookieName)

	if err != nil || c.Value == "" {
		return user.User{}, false
	}

	sess, err := s.sessions.Get(ctx, c.Value)

	if err != nil {
		return user.User{}, false
	}

	// the store returns expired rows until the sweeper catches up
	if sess.Expired(time.Now().UTC()) {
		return user.User{}, false
	}

	u, err := s.users.GetByID(ctx, sess.UserID)

	if err != nil {
		return user.User{}, false
	}

	return u, true
}

type bearerTokenStrategy struct {
	tokens *Manager
	users  UserLoader
}

func (s *bearerTokenStrategy) Resolve(ctx context.Context, r *http.Request) (user.User, bool) {
	header := r.Header.Get("Authorization")

	if !strings.HasPrefix(header, "Bearer ") {
		return user.User{}, false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))

	if raw == "" {
		return user.User{}, false
	}

	claims, err := s.tokens.Verify(raw)

	if err != nil {
		return user.User{}, false
	}

	u, err := s.users.GetByID(ctx, claims.Subject)

	if err != nil {
		return user.User{}, false
	}

	return u, true
}
