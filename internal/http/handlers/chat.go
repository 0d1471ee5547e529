package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/domain/chat"
	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/realtime"
)

type ChatStore interface {
	Create(ctx context.Context, m chat.Message) (chat.Message, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]chat.Message, error)
}

type ChatHandler struct {
	chat       ChatStore
	membership MembershipChecker
	notifier   Notifier
}

func NewChatHandler(store ChatStore, membership MembershipChecker, notifier Notifier) *ChatHandler {
	return &ChatHandler{chat: store, membership: membership, notifier: notifier}
}

func (h *ChatHandler) List(ctx *gin.Context) {
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

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

	items, err := h.chat.ListByProject(ctx.Request.Context(), projectID, limit)

	if err != nil {
		RespondInternal(ctx, "Could not list messages")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *ChatHandler) Post(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req chat.PostMessageRequest

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.membership.Check(ctx.Request.Context(), u.ID, req.ProjectID)

	if err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	created, err := h.chat.Create(ctx.Request.Context(), chat.NewFromPostRequest(req, u.ID, displayName(u)))

	if err != nil {
		RespondInternal(ctx, "Could not post message")
		return
	}

	event := realtime.Event{
		"type":      "chat-message",
		"projectId": p.ID,
		"message":   created,
	}

	// the author already has the message from the response body
	for _, memberID := range otherMembers(p, u.ID) {
		h.notifier.Broadcast(memberID, event)
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": created})
}
