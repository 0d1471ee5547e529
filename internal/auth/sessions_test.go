package auth

import (
	"context"
	"testing"
	"time"

	"github.com/workpadhq/workpad/internal/domain/session"
)

type fakeSessionStore struct {
	createFn func(ctx context.Context, s session.Session) error
	getFn    func(ctx context.Context, sid string) (session.Session, error)
	deleteFn func(ctx context.Context, sid string) error
}

func (f *fakeSessionStore) Create(ctx context.Context, s session.Session) error {
	if f.createFn != nil {
		return f.createFn(ctx, s)
	}

	return nil
}

func (f *fakeSessionStore) GetBySID(ctx context.Context, sid string) (session.Session, error) {
	if f.getFn != nil {
		return f.getFn(ctx, sid)
	}

	return session.Session{}, session.ErrNotFound
}

func (f *fakeSessionStore) DeleteBySID(ctx context.Context, sid string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, sid)
	}

	return nil
}

func TestSessionCreateGeneratesOpaqueToken(t *testing.T) {
	var stored session.Session

	store := &fakeSessionStore{
		createFn: func(ctx context.Context, s session.Session) error {
			stored = s
			return nil
		},
	}

	m := NewSessionManager(store, 7*24*time.Hour)

	s, err := m.Create(context.Background(), "user-1")

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 24 random bytes base64url-encoded, 32 chars
	if len(s.SID) < 32 {
		t.Fatalf("sid too short: %d chars", len(s.SID))
	}

	if s.UserID != "user-1" {
		t.Fatalf("got user %q, want user-1", s.UserID)
	}

	wantExpiry := s.CreatedAt.Add(7 * 24 * time.Hour)

	if !s.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("got expiry %v, want %v", s.ExpiresAt, wantExpiry)
	}

	if stored.SID != s.SID {
		t.Fatal("session was not handed to the store")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	m := NewSessionManager(&fakeSessionStore{}, time.Hour)

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		s, err := m.Create(context.Background(), "user-1")

		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if seen[s.SID] {
			t.Fatalf("duplicate sid after %d creates", i)
		}

		seen[s.SID] = true
	}
}

func TestSessionDeleteIsIdempotent(t *testing.T) {
	calls := 0

	store := &fakeSessionStore{
		deleteFn: func(ctx context.Context, sid string) error {
			calls++
			return nil
		},
	}

	m := NewSessionManager(store, time.Hour)

	if err := m.Delete(context.Background(), "gone-already"); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}

	if err := m.Delete(context.Background(), "gone-already"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}

	if calls != 2 {
		t.Fatalf("store delete called %d times, want 2", calls)
	}
}

func TestSessionManagerDefaultTTL(t *testing.T) {
	m := NewSessionManager(&fakeSessionStore{}, 0)

	if m.TTL() != 7*24*time.Hour {
		t.Fatalf("got default ttl %v, want 168h", m.TTL())
	}
}
