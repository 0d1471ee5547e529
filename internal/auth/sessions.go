package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/workpadhq/workpad/internal/domain/session"
)

// sidBytes gives 192 bits of entropy, comfortably past the 128-bit floor
// required for unguessable tokens.
const sidBytes = 24

type SessionStore interface {
	Create(ctx context.Context, s session.Session) error
	GetBySID(ctx context.Context, sid string) (session.Session, error)
	DeleteBySID(ctx context.Context, sid string) error
}

// SessionManager owns the session lifecycle: opaque token generation,
// lookup and explicit deletion. Eventual purge of expired rows is the
// sweeper's job.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &SessionManager{store: store, ttl: ttl}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create mints a session for userID. Uniqueness of the sid is enforced by
// the storage layer's primary key; a collision at 192 bits is not a case
// worth a retry loop.
func (m *SessionManager) Create(ctx context.Context, userID string) (session.Session, error) {
	sid, err := newSID()

	if err != nil {
		return session.Session{}, err
	}

	now := time.Now().UTC()

	s := session.Session{
		SID:       sid,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.Create(ctx, s); err != nil {
		return session.Session{}, err
	}

	return s, nil
}

// Get returns the session record whether or not it has expired; the caller
// decides what expiry means for it.
func (m *SessionManager) Get(ctx context.Context, sid string) (session.Session, error) {
	return m.store.GetBySID(ctx, sid)
}

// Delete is idempotent.
func (m *SessionManager) Delete(ctx context.Context, sid string) error {
	return m.store.DeleteBySID(ctx, sid)
}

func newSID() (string, error) {
	buf := make([]byte, sidBytes)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
