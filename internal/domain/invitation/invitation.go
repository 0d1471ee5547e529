package invitation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Invitations expire if untouched; the sweeper removes stale pending rows.
const DefaultTTL = 14 * 24 * time.Hour

type Invitation struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"projectId"`
	ProjectName  string     `json:"projectName,omitempty"`
	InviterID    string     `json:"inviterId"`
	InviteeID    string     `json:"inviteeId"`
	InviteeEmail string     `json:"inviteeEmail"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	RespondedAt  *time.Time `json:"respondedAt,omitempty"`
}

var (
	ErrNotFound      = errors.New("invitation not found")
	ErrAlreadyExists = errors.New("invitation already exists")
)

type CreateInvitationRequest struct {
	ProjectID    string `json:"projectId" binding:"required"`
	InviteeEmail string `json:"inviteeEmail" binding:"required,email"`
}

type RespondRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

func New(projectID, inviterID, inviteeID, inviteeEmail string) Invitation {
	now := time.Now().UTC()

	return Invitation{
		ID:           uuid.NewString(),
		ProjectID:    projectID,
		InviterID:    inviterID,
		InviteeID:    inviteeID,
		InviteeEmail: inviteeEmail,
		Status:       StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(DefaultTTL),
	}
}
