package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workpadhq/workpad/internal/auth"
	"github.com/workpadhq/workpad/internal/domain/session"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/ratelimit"
	"github.com/workpadhq/workpad/internal/repo/postgres"
	"github.com/workpadhq/workpad/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id, name string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type SessionService interface {
	Create(ctx context.Context, userID string) (session.Session, error)
	Delete(ctx context.Context, sid string) error
	TTL() time.Duration
}

type AuthHandler struct {
	users        UserStore
	sessions     SessionService
	limiter      *ratelimit.Limiter
	log          *slog.Logger
	secureCookie bool
}

func NewAuthHandler(users UserStore, sessions SessionService, limiter *ratelimit.Limiter, log *slog.Logger, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		sessions:     sessions,
		limiter:      limiter,
		log:          log,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         user.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := h.users.Create(ctx.Request.Context(), u)

	if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
		RespondConflict(ctx, "email_taken", "An account with this email already exists")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not create account")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": created.Sanitized()})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	key := middlewares.ClientIPKey(ctx)

	u, err := h.users.GetByEmail(ctx.Request.Context(), req.Email)

	if err != nil || security.CheckPassword(u.PasswordHash, req.Password) != nil {
		h.limiter.RecordFailure(ctx.Request.Context(), key)

		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	sess, err := h.sessions.Create(ctx.Request.Context(), u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return
	}

	h.limiter.Reset(ctx.Request.Context(), key)

	h.setSessionCookie(ctx, sess.SID, int(h.sessions.TTL().Seconds()))

	h.log.InfoContext(ctx.Request.Context(), "user logged in", "user_id", u.ID)

	ctx.JSON(http.StatusOK, gin.H{"user": u.Sanitized()})
}

// Logout is idempotent: a missing or already-deleted session still clears
// the cookie and succeeds.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	sid, err := ctx.Cookie(auth.SessionCookieName)

	if err == nil && sid != "" {
		if err := h.sessions.Delete(ctx.Request.Context(), sid); err != nil {
			RespondInternal(ctx, "Could not end session")
			return
		}
	}

	h.setSessionCookie(ctx, "", -1)

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	err := h.users.UpdateProfile(ctx.Request.Context(), u.ID, req.Name)

	if errors.Is(err, postgres.ErrUserNotFound) {
		RespondNotFound(ctx, "User not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not update profile")
		return
	}

	u.Name = req.Name

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	authed, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// context carries the sanitized user, reload for the hash
	u, err := h.users.GetByID(ctx.Request.Context(), authed.ID)

	if err != nil {
		RespondInternal(ctx, "Could not verify password")
		return
	}

	if security.CheckPassword(u.PasswordHash, req.CurrentPassword) != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Current password is incorrect")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not process password")
		return
	}

	if err := h.users.UpdatePassword(ctx.Request.Context(), u.ID, hash); err != nil {
		RespondInternal(ctx, "Could not update password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, sid string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(auth.SessionCookieName, sid, maxAge, "/", "", h.secureCookie, true)
}
