package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/todo"
	"github.com/workpadhq/workpad/internal/observability"
)

type TodosRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTodosRepo(pool *pgxpool.Pool, prom *observability.Prom) *TodosRepo {
	return &TodosRepo{pool: pool, prom: prom}
}

func (r *TodosRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const todoColumns = `id, project_id, title, done, created_by, created_at, updated_at`

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	err := r.observe("todos.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO todos (`+todoColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, t.ProjectID, t.Title, t.Done, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return todo.Todo{}, err
	}

	return t, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	var t todo.Todo

	err := r.observe("todos.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+todoColumns+` FROM todos WHERE id = $1`, id,
		).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Done, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}

func (r *TodosRepo) ListByProject(ctx context.Context, projectID string) ([]todo.Todo, error) {
	var out []todo.Todo

	err := r.observe("todos.list_by_project", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+todoColumns+`
			FROM todos
			WHERE project_id = $1
			ORDER BY created_at ASC, id ASC`, projectID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]todo.Todo, 0, 32)

		for rows.Next() {
			var t todo.Todo

			if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Done, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TodosRepo) Update(ctx context.Context, id string, title *string, done *bool) (todo.Todo, error) {
	var t todo.Todo

	err := r.observe("todos.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE todos
			SET title = COALESCE($2, title),
			    done = COALESCE($3, done),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+todoColumns, id, title, done,
		).Scan(&t.ID, &t.ProjectID, &t.Title, &t.Done, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return todo.Todo{}, todo.ErrNotFound
		}

		return todo.Todo{}, err
	}

	return t, nil
}

func (r *TodosRepo) Delete(ctx context.Context, id string) error {
	return r.observe("todos.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return todo.ErrNotFound
		}

		return nil
	})
}
