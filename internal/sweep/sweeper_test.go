package sweep

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/workpadhq/workpad/internal/observability"
)

type fakePurger struct {
	n   int64
	err error
}

func (f fakePurger) DeleteExpired(context.Context) (int64, error) {
	return f.n, f.err
}

func newTestSweeper(sessions, invitations fakePurger) *Sweeper {
	prom := observability.NewProm(prometheus.NewRegistry())

	return New(slog.New(slog.DiscardHandler), prom, sessions, invitations, time.Minute)
}

func TestPurgeCountsBothTables(t *testing.T) {
	s := newTestSweeper(fakePurger{n: 3}, fakePurger{n: 2})

	res, err := s.Purge(context.Background())

	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}

	if res.Sessions != 3 || res.Invitations != 2 {
		t.Fatalf("got %+v, want sessions=3 invitations=2", res)
	}
}

func TestPurgeKeepsGoingAfterFirstTableFails(t *testing.T) {
	boom := errors.New("db down")

	s := newTestSweeper(fakePurger{err: boom}, fakePurger{n: 4})

	res, err := s.Purge(context.Background())

	if !errors.Is(err, boom) {
		t.Fatalf("got err %v, want the session failure surfaced", err)
	}

	if res.Invitations != 4 {
		t.Fatalf("invitation purge must still run, got %+v", res)
	}
}

func TestPurgeWithoutMetricsRegistry(t *testing.T) {
	s := New(slog.New(slog.DiscardHandler), nil, fakePurger{n: 2}, fakePurger{n: 1}, time.Minute)

	res, err := s.Purge(context.Background())

	if err != nil {
		t.Fatalf("purge without metrics failed: %v", err)
	}

	if res.Sessions != 2 || res.Invitations != 1 {
		t.Fatalf("got %+v, want sessions=2 invitations=1", res)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestSweeper(fakePurger{}, fakePurger{})
	s.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
