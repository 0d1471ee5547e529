package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/chat"
	"github.com/workpadhq/workpad/internal/observability"
)

type ChatRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewChatRepo(pool *pgxpool.Pool, prom *observability.Prom) *ChatRepo {
	return &ChatRepo{pool: pool, prom: prom}
}

func (r *ChatRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ChatRepo) Create(ctx context.Context, m chat.Message) (chat.Message, error) {
	err := r.observe("chat.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO chat_messages (id, project_id, author_id, author_name, body, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			m.ID, m.ProjectID, m.AuthorID, m.AuthorName, m.Body, m.CreatedAt,
		)
		return err
	})

	if err != nil {
		return chat.Message{}, err
	}

	return m, nil
}

// ListByProject returns the most recent messages, oldest first.
func (r *ChatRepo) ListByProject(ctx context.Context, projectID string, limit int) ([]chat.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var out []chat.Message

	err := r.observe("chat.list_by_project", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, project_id, author_id, author_name, body, created_at
			FROM (
				SELECT id, project_id, author_id, author_name, body, created_at
				FROM chat_messages
				WHERE project_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2
			) latest
			ORDER BY created_at ASC, id ASC`, projectID, limit,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]chat.Message, 0, limit)

		for rows.Next() {
			var m chat.Message

			if err := rows.Scan(&m.ID, &m.ProjectID, &m.AuthorID, &m.AuthorName, &m.Body, &m.CreatedAt); err != nil {
				return err
			}

			out = append(out, m)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
