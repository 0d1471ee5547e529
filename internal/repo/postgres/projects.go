package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/project"
	"github.com/workpadhq/workpad/internal/observability"
)

type ProjectsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewProjectsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ProjectsRepo {
	return &ProjectsRepo{pool: pool, prom: prom}
}

func (r *ProjectsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const projectColumns = `id, name, description, owner_id, created_by, member_ids, created_at, updated_at`

func (r *ProjectsRepo) Create(ctx context.Context, p project.Project) (project.Project, error) {
	err := r.observe("projects.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO projects (`+projectColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.Name, p.Description, p.OwnerID, p.CreatedBy, p.MemberIDs, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return project.Project{}, err
	}

	return p, nil
}

func (r *ProjectsRepo) GetByID(ctx context.Context, id string) (project.Project, error) {
	var p project.Project

	err := r.observe("projects.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id,
		).Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.OwnerID,
			&p.CreatedBy,
			&p.MemberIDs,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}

		return project.Project{}, err
	}

	return p, nil
}

// ListForUser returns every project the user can access, owner and creator
// included even when the member list does not mention them.
func (r *ProjectsRepo) ListForUser(ctx context.Context, userID string) ([]project.Project, error) {
	var out []project.Project

	err := r.observe("projects.list_for_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+projectColumns+`
			FROM projects
			WHERE owner_id = $1 OR created_by = $1 OR $1 = ANY(member_ids)
			ORDER BY created_at DESC`, userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]project.Project, 0, 16)

		for rows.Next() {
			var p project.Project

			err := rows.Scan(
				&p.ID,
				&p.Name,
				&p.Description,
				&p.OwnerID,
				&p.CreatedBy,
				&p.MemberIDs,
				&p.CreatedAt,
				&p.UpdatedAt,
			)

			if err != nil {
				return err
			}

			out = append(out, p)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// AddMember appends userID to the member list unless already present.
func (r *ProjectsRepo) AddMember(ctx context.Context, projectID, userID string) error {
	return r.observe("projects.add_member", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE projects
			SET member_ids = array_append(member_ids, $2), updated_at = NOW()
			WHERE id = $1 AND NOT ($2 = ANY(member_ids))`,
			projectID, userID,
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			// either unknown project or an already-listed member; disambiguate
			var exists bool

			err := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`, projectID,
			).Scan(&exists)

			if err != nil {
				return err
			}

			if !exists {
				return project.ErrNotFound
			}
		}

		return nil
	})
}
