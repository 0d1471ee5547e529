package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/auth"
	"github.com/workpadhq/workpad/internal/domain/project"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/realtime"
)

// MembershipChecker is the access gate every project-scoped handler runs
// before touching data. Existence is decided before membership, so an
// unknown project is a not-found, not a forbidden.
type MembershipChecker interface {
	Check(ctx context.Context, userID, projectID string) (project.Project, error)
}

// Notifier pushes an event to every open stream of one user.
type Notifier interface {
	Broadcast(userID string, event any)
}

type ProjectStore interface {
	Create(ctx context.Context, p project.Project) (project.Project, error)
	GetByID(ctx context.Context, id string) (project.Project, error)
	ListForUser(ctx context.Context, userID string) ([]project.Project, error)
	AddMember(ctx context.Context, projectID, userID string) error
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type ProjectsHandler struct {
	projects   ProjectStore
	users      UserGetter
	membership MembershipChecker
	notifier   Notifier
}

func NewProjectsHandler(projects ProjectStore, users UserGetter, membership MembershipChecker, notifier Notifier) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, users: users, membership: membership, notifier: notifier}
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	created, err := h.projects.Create(ctx.Request.Context(), project.NewFromCreateRequest(req, u.ID))

	if err != nil {
		RespondInternal(ctx, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"project": created})
}

func (h *ProjectsHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	items, err := h.projects.ListForUser(ctx.Request.Context(), u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list projects")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *ProjectsHandler) Get(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	p, err := h.membership.Check(ctx.Request.Context(), u.ID, ctx.Param("id"))

	if err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"project": p})
}

// AddMember lets the owner attach a user directly, skipping the
// invitation flow. Membership changes stay owner-only; regular members
// go through invitations.
func (h *ProjectsHandler) AddMember(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req project.AddMemberRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.membership.Check(ctx.Request.Context(), u.ID, ctx.Param("id"))

	if err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	if u.ID != p.OwnerID && u.Role != user.RoleAdmin {
		RespondForbidden(ctx, "Only the project owner can add members directly")
		return
	}

	target, err := h.users.GetByID(ctx.Request.Context(), req.UserID)

	if err != nil {
		RespondNotFound(ctx, "User not found")
		return
	}

	if p.HasMember(target.ID) {
		RespondConflict(ctx, "already_member", "This user is already a project member")
		return
	}

	if err := h.projects.AddMember(ctx.Request.Context(), p.ID, target.ID); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not add member")
		return
	}

	event := realtime.Event{
		"type":        "member-joined",
		"projectId":   p.ID,
		"projectName": p.Name,
		"userName":    displayName(target),
	}

	// existing members plus the user who was just added
	for _, memberID := range append(otherMembers(p, u.ID), target.ID) {
		h.notifier.Broadcast(memberID, event)
	}

	p.MemberIDs = append(p.MemberIDs, target.ID)

	ctx.JSON(http.StatusOK, gin.H{"project": p})
}

// respondAccessErr maps membership-gate failures onto HTTP statuses.
func respondAccessErr(ctx *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		RespondNotFound(ctx, notFoundMsg)
	case errors.Is(err, auth.ErrNotMember):
		RespondForbidden(ctx, "You are not a member of this project")
	default:
		RespondInternal(ctx, "Could not verify project access")
	}
}

// displayName picks what other members see in realtime payloads.
func displayName(u user.User) string {
	if u.Name != "" {
		return u.Name
	}

	return u.Email
}

// otherMembers lists every member except the acting user, owner and
// creator included, without duplicates.
func otherMembers(p project.Project, actorID string) []string {
	seen := map[string]struct{}{actorID: {}}

	ids := make([]string, 0, len(p.MemberIDs)+2)

	for _, id := range append([]string{p.OwnerID, p.CreatedBy}, p.MemberIDs...) {
		if id == "" {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
