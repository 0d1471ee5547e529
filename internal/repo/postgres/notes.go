package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/note"
	"github.com/workpadhq/workpad/internal/observability"
)

type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func (r *NotesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const noteColumns = `id, project_id, title, body, created_by, created_at, updated_at`

func (r *NotesRepo) Create(ctx context.Context, n note.Note) (note.Note, error) {
	err := r.observe("notes.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO notes (`+noteColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			n.ID, n.ProjectID, n.Title, n.Body, n.CreatedBy, n.CreatedAt, n.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id,
		).Scan(&n.ID, &n.ProjectID, &n.Title, &n.Body, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}

func (r *NotesRepo) ListByProject(ctx context.Context, projectID string) ([]note.Note, error) {
	var out []note.Note

	err := r.observe("notes.list_by_project", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+noteColumns+`
			FROM notes
			WHERE project_id = $1
			ORDER BY updated_at DESC, id ASC`, projectID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]note.Note, 0, 32)

		for rows.Next() {
			var n note.Note

			if err := rows.Scan(&n.ID, &n.ProjectID, &n.Title, &n.Body, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
				return err
			}

			out = append(out, n)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *NotesRepo) Update(ctx context.Context, id string, title, body *string) (note.Note, error) {
	var n note.Note

	err := r.observe("notes.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE notes
			SET title = COALESCE($2, title),
			    body = COALESCE($3, body),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+noteColumns, id, title, body,
		).Scan(&n.ID, &n.ProjectID, &n.Title, &n.Body, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}

		return note.Note{}, err
	}

	return n, nil
}
