package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/workpadhq/workpad/internal/config"
	"github.com/workpadhq/workpad/internal/observability"
	"github.com/workpadhq/workpad/internal/repo/postgres"
	"github.com/workpadhq/workpad/internal/sweep"
	"github.com/workpadhq/workpad/internal/worker"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	prom := observability.NewProm(prometheus.NewRegistry())

	sessionsRepo := postgres.NewSessionsRepo(pool, prom)
	invitationsRepo := postgres.NewInvitationsRepo(pool, prom)

	sweeper := sweep.New(log, prom, sessionsRepo, invitationsRepo, cfg.SweepInterval)

	var shuttingDown atomic.Bool

	probes := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           worker.HealthHandler(pingAdapter{pool}, shuttingDown.Load),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := probes.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("probe server failed", "err", err)
		}
	}()

	log.Info("sweep worker started", "interval", cfg.SweepInterval.String())

	sweeper.Run(ctx)

	shuttingDown.Store(true)

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = probes.Shutdown(shutdownCtx)

	log.Info("sweep worker shutdown complete")
}

type pingAdapter struct {
	pool *pgxpool.Pool
}

func (p pingAdapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
