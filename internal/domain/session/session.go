package session

import (
	"errors"
	"time"
)

// Session is a server-persisted opaque proof of authentication. Expiry is
// fixed at creation, there is no sliding renewal.
type Session struct {
	SID       string    `json:"sid"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

var ErrNotFound = errors.New("session not found")

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
