package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/domain/invitation"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/realtime"
	"github.com/workpadhq/workpad/internal/repo/postgres"
)

type InvitationStore interface {
	Create(ctx context.Context, inv invitation.Invitation) (invitation.Invitation, error)
	ListForInvitee(ctx context.Context, inviteeID string) ([]invitation.Invitation, error)
	Respond(ctx context.Context, id, inviteeID string, accept bool) (invitation.Invitation, error)
}

type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type InvitationsHandler struct {
	invitations InvitationStore
	users       UserFinder
	membership  MembershipChecker
	notifier    Notifier
}

func NewInvitationsHandler(invitations InvitationStore, users UserFinder, membership MembershipChecker, notifier Notifier) *InvitationsHandler {
	return &InvitationsHandler{
		invitations: invitations,
		users:       users,
		membership:  membership,
		notifier:    notifier,
	}
}

func (h *InvitationsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req invitation.CreateInvitationRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.membership.Check(ctx.Request.Context(), u.ID, req.ProjectID)

	if err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	invitee, err := h.users.GetByEmail(ctx.Request.Context(), req.InviteeEmail)

	if errors.Is(err, postgres.ErrUserNotFound) {
		RespondNotFound(ctx, "No account with this email")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not look up user")
		return
	}

	if p.HasMember(invitee.ID) {
		RespondConflict(ctx, "already_member", "This user is already a project member")
		return
	}

	inv := invitation.New(p.ID, u.ID, invitee.ID, invitee.Email)
	inv.ProjectName = p.Name

	created, err := h.invitations.Create(ctx.Request.Context(), inv)

	if errors.Is(err, invitation.ErrAlreadyExists) {
		RespondConflict(ctx, "invitation_pending", "An invitation for this user is already pending")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not create invitation")
		return
	}

	created.ProjectName = p.Name

	h.notifier.Broadcast(invitee.ID, realtime.Event{
		"type":       "invitation-received",
		"invitation": created,
	})

	ctx.JSON(http.StatusCreated, gin.H{"invitation": created})
}

func (h *InvitationsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	items, err := h.invitations.ListForInvitee(ctx.Request.Context(), u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list invitations")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// Respond accepts or declines a pending invitation addressed to the
// caller. Anything else, an expired invitation included, is a not-found:
// the caller cannot probe invitations that are none of their business.
func (h *InvitationsHandler) Respond(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req invitation.RespondRequest

	if !BindJSON(ctx, &req) {
		return
	}

	accept := req.Action == "accept"

	inv, err := h.invitations.Respond(ctx.Request.Context(), ctx.Param("id"), u.ID, accept)

	if errors.Is(err, invitation.ErrNotFound) {
		RespondNotFound(ctx, "Invitation not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not respond to invitation")
		return
	}

	if accept {
		// the caller is a member now, so the gate passes and hands back
		// the fresh member list
		p, err := h.membership.Check(ctx.Request.Context(), u.ID, inv.ProjectID)

		if err == nil {
			event := realtime.Event{
				"type":        "member-joined",
				"projectId":   p.ID,
				"projectName": p.Name,
				"userName":    displayName(u),
			}

			for _, memberID := range otherMembers(p, u.ID) {
				h.notifier.Broadcast(memberID, event)
			}
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"invitation": inv})
}
