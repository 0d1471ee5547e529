package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type erroringStore struct{}

func (erroringStore) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func (erroringStore) Count(context.Context, string) (int64, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func (erroringStore) Reset(context.Context, string) error {
	return errors.New("store down")
}

func TestLimiterBlocksAfterLimit(t *testing.T) {
	l := New(NewMemoryStore(), 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := l.Allow(ctx, "1.2.3.4")

		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}

		if res.Remaining != 3-i-1 {
			t.Fatalf("attempt %d: got remaining %d, want %d", i+1, res.Remaining, 3-i-1)
		}

		l.RecordFailure(ctx, "1.2.3.4")
	}

	res := l.Allow(ctx, "1.2.3.4")

	if res.Allowed {
		t.Fatal("expected lockout after 3 failures")
	}

	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("retry-after %v outside the window", res.RetryAfter)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New(NewMemoryStore(), 1, time.Minute)
	ctx := context.Background()

	l.RecordFailure(ctx, "1.2.3.4")

	if l.Allow(ctx, "1.2.3.4").Allowed {
		t.Fatal("expected 1.2.3.4 locked out")
	}

	if !l.Allow(ctx, "5.6.7.8").Allowed {
		t.Fatal("a lockout must not leak to other keys")
	}
}

func TestLimiterResetClearsLockout(t *testing.T) {
	l := New(NewMemoryStore(), 1, time.Minute)
	ctx := context.Background()

	l.RecordFailure(ctx, "1.2.3.4")

	if l.Allow(ctx, "1.2.3.4").Allowed {
		t.Fatal("expected lockout")
	}

	l.Reset(ctx, "1.2.3.4")

	if !l.Allow(ctx, "1.2.3.4").Allowed {
		t.Fatal("reset must clear the lockout")
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	store := NewMemoryStore()
	l := New(store, 1, 10*time.Millisecond)
	ctx := context.Background()

	l.RecordFailure(ctx, "1.2.3.4")

	if l.Allow(ctx, "1.2.3.4").Allowed {
		t.Fatal("expected lockout inside the window")
	}

	time.Sleep(20 * time.Millisecond)

	if !l.Allow(ctx, "1.2.3.4").Allowed {
		t.Fatal("lockout must lapse with the window")
	}
}

func TestLimiterFailsOpenOnStoreError(t *testing.T) {
	l := New(erroringStore{}, 1, time.Minute)

	if !l.Allow(context.Background(), "1.2.3.4").Allowed {
		t.Fatal("a broken store must not lock users out")
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := New(NewMemoryStore(), 0, 0)

	if l.Limit() != 5 {
		t.Fatalf("got default limit %d, want 5", l.Limit())
	}
}
