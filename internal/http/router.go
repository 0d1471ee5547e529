package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/workpadhq/workpad/internal/auth"
	"github.com/workpadhq/workpad/internal/config"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/handlers"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/observability"
	"github.com/workpadhq/workpad/internal/ratelimit"
	"github.com/workpadhq/workpad/internal/realtime"
	"github.com/workpadhq/workpad/internal/repo/postgres"
	"github.com/workpadhq/workpad/internal/sweep"
)

// Deps carries everything the router wires together; main owns the
// lifecycle of each.
type Deps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	Redis   *redis.Client
	Prom    *observability.Prom
	Metrics http.Handler
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("workpad-api"))
	r.Use(d.Prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom)
	sessionsRepo := postgres.NewSessionsRepo(d.Pool, d.Prom)
	projectsRepo := postgres.NewProjectsRepo(d.Pool, d.Prom)
	todosRepo := postgres.NewTodosRepo(d.Pool, d.Prom)
	notesRepo := postgres.NewNotesRepo(d.Pool, d.Prom)
	chatRepo := postgres.NewChatRepo(d.Pool, d.Prom)
	invitationsRepo := postgres.NewInvitationsRepo(d.Pool, d.Prom)

	// auth core
	sessions := auth.NewSessionManager(sessionsRepo, d.Cfg.SessionTTL)
	tokens := auth.NewManager(d.Cfg.TokenSecret, d.Cfg.TokenTTL)
	resolver := auth.NewResolver(sessions, tokens, usersRepo)
	membership := auth.NewMembershipResolver(projectsRepo)

	var limiterStore ratelimit.Store = ratelimit.NewMemoryStore()

	if d.Redis != nil {
		limiterStore = ratelimit.NewRedisStore(d.Redis)
	}

	limiter := ratelimit.New(limiterStore, d.Cfg.LoginMaxAttempts, d.Cfg.LoginWindow)

	broadcaster := realtime.NewBroadcaster(d.Log, d.Prom, d.Cfg.MaxStreams)

	sweeper := sweep.New(d.Log, d.Prom, sessionsRepo, invitationsRepo, d.Cfg.SweepInterval)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, sessions, limiter, d.Log, d.Cfg.Env == "prod")
	projectsHandler := handlers.NewProjectsHandler(projectsRepo, usersRepo, membership, broadcaster)
	todosHandler := handlers.NewTodosHandler(todosRepo, membership)
	notesHandler := handlers.NewNotesHandler(notesRepo, membership, broadcaster)
	chatHandler := handlers.NewChatHandler(chatRepo, membership, broadcaster)
	invitationsHandler := handlers.NewInvitationsHandler(invitationsRepo, usersRepo, membership, broadcaster)
	realtimeHandler := handlers.NewRealtimeHandler(broadcaster, 0)
	adminHandler := handlers.NewAdminHandler(sweeper)

	authMW := middlewares.NewAuthMiddleware(resolver)

	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", middlewares.LoginRateLimiter(limiter), authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("", authMW.RequireAuth())

	protected.GET("/auth/me", authHandler.Me)
	protected.PATCH("/auth/profile", authHandler.UpdateProfile)
	protected.POST("/auth/change-password", authHandler.ChangePassword)

	protected.POST("/projects", projectsHandler.Create)
	protected.GET("/projects", projectsHandler.List)
	protected.GET("/projects/:id", projectsHandler.Get)
	protected.POST("/projects/:id/members", projectsHandler.AddMember)

	protected.GET("/todos", todosHandler.List)
	protected.POST("/todos", todosHandler.Create)
	protected.PATCH("/todos/:id", todosHandler.Update)
	protected.DELETE("/todos/:id", todosHandler.Delete)

	protected.GET("/notes", notesHandler.List)
	protected.POST("/notes", notesHandler.Create)
	protected.PATCH("/notes/:id", notesHandler.Update)

	protected.GET("/chat", chatHandler.List)
	protected.POST("/chat", chatHandler.Post)

	protected.GET("/invitations", invitationsHandler.List)
	protected.POST("/invitations", invitationsHandler.Create)
	protected.PATCH("/invitations/:id", invitationsHandler.Respond)

	protected.GET("/realtime/updates", realtimeHandler.Updates)

	admin := protected.Group("/admin", authMW.RequireRole(user.RoleAdmin))
	admin.POST("/purge", adminHandler.Purge)

	return r
}
