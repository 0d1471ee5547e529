package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/session"
	"github.com/workpadhq/workpad/internal/observability"
)

type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{pool: pool, prom: prom}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SessionsRepo) Create(ctx context.Context, s session.Session) error {
	return r.observe("sessions.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO sessions (sid, user_id, created_at, expires_at)
			VALUES ($1,$2,$3,$4)`,
			s.SID, s.UserID, s.CreatedAt, s.ExpiresAt,
		)
		return err
	})
}

// GetBySID is an exact-match lookup. Expiry is the caller's concern, the
// sweeper only purges rows eventually.
func (r *SessionsRepo) GetBySID(ctx context.Context, sid string) (session.Session, error) {
	var s session.Session

	err := r.observe("sessions.get_by_sid", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT sid, user_id, created_at, expires_at
			FROM sessions
			WHERE sid = $1`, sid,
		).Scan(&s.SID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}

		return session.Session{}, err
	}

	return s, nil
}

// DeleteBySID is idempotent, deleting an unknown sid is not an error.
func (r *SessionsRepo) DeleteBySID(ctx context.Context, sid string) error {
	return r.observe("sessions.delete_by_sid", func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
		return err
	})
}

func (r *SessionsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var purged int64

	err := r.observe("sessions.delete_expired", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)

		if err != nil {
			return err
		}

		purged = tag.RowsAffected()
		return nil
	})

	return purged, err
}
