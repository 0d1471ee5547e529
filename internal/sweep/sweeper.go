// Package sweep removes rows whose lifetime has lapsed: expired sessions
// and stale invitations. Expiry checks at read time already ignore such
// rows, the sweeper just reclaims the space.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/workpadhq/workpad/internal/observability"
)

type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type InvitationPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

type Result struct {
	Sessions    int64 `json:"sessions"`
	Invitations int64 `json:"invitations"`
}

type Sweeper struct {
	log         *slog.Logger
	prom        *observability.Prom
	sessions    SessionPurger
	invitations InvitationPurger
	interval    time.Duration
}

func New(log *slog.Logger, prom *observability.Prom, sessions SessionPurger, invitations InvitationPurger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Sweeper{
		log:         log,
		prom:        prom,
		sessions:    sessions,
		invitations: invitations,
		interval:    interval,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled. A failed pass is
// logged and retried on the next tick, never fatal.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.Purge(ctx)

			if err != nil {
				s.log.ErrorContext(ctx, "sweep failed", "error", err)
				continue
			}

			if res.Sessions > 0 || res.Invitations > 0 {
				s.log.InfoContext(ctx, "sweep complete",
					"sessions_purged", res.Sessions,
					"invitations_purged", res.Invitations,
				)
			}
		}
	}
}

// Purge runs one pass over both tables. It keeps going after a failure on
// the first table so one broken query does not starve the other.
func (s *Sweeper) Purge(ctx context.Context) (Result, error) {
	var res Result
	var firstErr error

	n, err := s.sessions.DeleteExpired(ctx)

	if err != nil {
		firstErr = err
	} else {
		res.Sessions = n
		s.countPurged("sessions", n)
	}

	n, err = s.invitations.DeleteExpired(ctx)

	if err != nil && firstErr == nil {
		firstErr = err
	} else if err == nil {
		res.Invitations = n
		s.countPurged("invitations", n)
	}

	return res, firstErr
}

// metrics are optional, same contract the repos follow
func (s *Sweeper) countPurged(table string, n int64) {
	if s.prom != nil {
		s.prom.RowsPurged.WithLabelValues(table).Add(float64(n))
	}
}
