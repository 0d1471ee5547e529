package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/domain/note"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/realtime"
)

type NoteStore interface {
	Create(ctx context.Context, n note.Note) (note.Note, error)
	GetByID(ctx context.Context, id string) (note.Note, error)
	ListByProject(ctx context.Context, projectID string) ([]note.Note, error)
	Update(ctx context.Context, id string, title, body *string) (note.Note, error)
}

type NotesHandler struct {
	notes      NoteStore
	membership MembershipChecker
	notifier   Notifier
}

func NewNotesHandler(notes NoteStore, membership MembershipChecker, notifier Notifier) *NotesHandler {
	return &NotesHandler{notes: notes, membership: membership, notifier: notifier}
}

func (h *NotesHandler) List(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	projectID := ctx.Query("projectId")

	if projectID == "" {
		RespondBadRequest(ctx, "projectId query parameter is required", nil)
		return
	}

	if _, err := h.membership.Check(ctx.Request.Context(), u.ID, projectID); err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	items, err := h.notes.ListByProject(ctx.Request.Context(), projectID)

	if err != nil {
		RespondInternal(ctx, "Could not list notes")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *NotesHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.membership.Check(ctx.Request.Context(), u.ID, req.ProjectID); err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	created, err := h.notes.Create(ctx.Request.Context(), note.NewFromCreateRequest(req, u.ID))

	if err != nil {
		RespondInternal(ctx, "Could not create note")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"note": created})
}

func (h *NotesHandler) Update(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req note.UpdateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	n, err := h.notes.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if errors.Is(err, note.ErrNotFound) {
		RespondNotFound(ctx, "Note not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not load note")
		return
	}

	p, err := h.membership.Check(ctx.Request.Context(), u.ID, n.ProjectID)

	if err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	updated, err := h.notes.Update(ctx.Request.Context(), n.ID, req.Title, req.Body)

	if errors.Is(err, note.ErrNotFound) {
		RespondNotFound(ctx, "Note not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not update note")
		return
	}

	event := realtime.Event{
		"type":      "note-updated",
		"projectId": p.ID,
		"note":      updated,
	}

	for _, memberID := range otherMembers(p, u.ID) {
		h.notifier.Broadcast(memberID, event)
	}

	ctx.JSON(http.StatusOK, gin.H{"note": updated})
}
