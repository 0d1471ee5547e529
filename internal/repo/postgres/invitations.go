package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workpadhq/workpad/internal/domain/invitation"
	"github.com/workpadhq/workpad/internal/observability"
)

type InvitationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewInvitationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *InvitationsRepo {
	return &InvitationsRepo{pool: pool, prom: prom}
}

func (r *InvitationsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const invitationColumns = `id, project_id, inviter_id, invitee_id, invitee_email, status, created_at, expires_at, responded_at`

func (r *InvitationsRepo) Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error) {
	err := r.observe("invitations.create", func() error {
		// one pending invitation per (project, invitee)
		var exists bool

		err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(
				SELECT 1 FROM invitations
				WHERE project_id = $1 AND invitee_id = $2 AND status = 'pending'
			)`, inv.ProjectID, inv.InviteeID,
		).Scan(&exists)

		if err != nil {
			return err
		}

		if exists {
			return invitation.ErrAlreadyExists
		}

		_, err = r.pool.Exec(ctx,
			`INSERT INTO invitations (`+invitationColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			inv.ID, inv.ProjectID, inv.InviterID, inv.InviteeID, inv.InviteeEmail,
			inv.Status, inv.CreatedAt, inv.ExpiresAt, inv.RespondedAt,
		)

		return err
	})

	if err != nil {
		return invitation.Invitation{}, err
	}

	return inv, nil
}

// ListForInvitee returns live pending invitations, project name joined in.
func (r *InvitationsRepo) ListForInvitee(ctx context.Context, inviteeID string) ([]invitation.Invitation, error) {
	var out []invitation.Invitation

	err := r.observe("invitations.list_for_invitee", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT i.id, i.project_id, p.name, i.inviter_id, i.invitee_id, i.invitee_email,
			        i.status, i.created_at, i.expires_at, i.responded_at
			FROM invitations i
			JOIN projects p ON p.id = i.project_id
			WHERE i.invitee_id = $1 AND i.status = 'pending' AND i.expires_at > NOW()
			ORDER BY i.created_at DESC`, inviteeID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]invitation.Invitation, 0, 8)

		for rows.Next() {
			var inv invitation.Invitation

			err := rows.Scan(
				&inv.ID, &inv.ProjectID, &inv.ProjectName, &inv.InviterID, &inv.InviteeID,
				&inv.InviteeEmail, &inv.Status, &inv.CreatedAt, &inv.ExpiresAt, &inv.RespondedAt,
			)

			if err != nil {
				return err
			}

			out = append(out, inv)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Respond accepts or declines a pending invitation addressed to inviteeID.
// An accept also appends the invitee to the project's member list; both
// writes happen in one transaction with the invitation row locked so that a
// double-accept cannot add the member twice.
func (r *InvitationsRepo) Respond(ctx context.Context, id, inviteeID string, accept bool) (invitation.Invitation, error) {
	var inv invitation.Invitation

	err := r.observe("invitations.respond", func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if err != nil {
			return err
		}

		defer func() { _ = tx.Rollback(ctx) }()

		err = tx.QueryRow(ctx,
			`SELECT `+invitationColumns+`
			FROM invitations
			WHERE id = $1
			FOR UPDATE`, id,
		).Scan(
			&inv.ID, &inv.ProjectID, &inv.InviterID, &inv.InviteeID, &inv.InviteeEmail,
			&inv.Status, &inv.CreatedAt, &inv.ExpiresAt, &inv.RespondedAt,
		)

		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return invitation.ErrNotFound
			}

			return err
		}

		if inv.InviteeID != inviteeID || inv.Status != invitation.StatusPending || inv.ExpiresAt.Before(time.Now().UTC()) {
			return invitation.ErrNotFound
		}

		status := invitation.StatusDeclined

		if accept {
			status = invitation.StatusAccepted

			_, err = tx.Exec(ctx,
				`UPDATE projects
				SET member_ids = array_append(member_ids, $2), updated_at = NOW()
				WHERE id = $1 AND NOT ($2 = ANY(member_ids))`,
				inv.ProjectID, inviteeID,
			)

			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()

		_, err = tx.Exec(ctx,
			`UPDATE invitations
			SET status = $2, responded_at = $3
			WHERE id = $1`, id, status, now,
		)

		if err != nil {
			return err
		}

		inv.Status = status
		inv.RespondedAt = &now

		return tx.Commit(ctx)
	})

	if err != nil {
		return invitation.Invitation{}, err
	}

	return inv, nil
}

func (r *InvitationsRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var purged int64

	err := r.observe("invitations.delete_expired", func() error {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM invitations WHERE status = 'pending' AND expires_at < NOW()`)

		if err != nil {
			return err
		}

		purged = tag.RowsAffected()
		return nil
	})

	return purged, err
}
