package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/domain/todo"
	"github.com/workpadhq/workpad/internal/http/middlewares"
)

type TodoStore interface {
	Create(ctx context.Context, t todo.Todo) (todo.Todo, error)
	GetByID(ctx context.Context, id string) (todo.Todo, error)
	ListByProject(ctx context.Context, projectID string) ([]todo.Todo, error)
	Update(ctx context.Context, id string, title *string, done *bool) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
}

type TodosHandler struct {
	todos      TodoStore
	membership MembershipChecker
}

func NewTodosHandler(todos TodoStore, membership MembershipChecker) *TodosHandler {
	return &TodosHandler{todos: todos, membership: membership}
}

func (h *TodosHandler) List(ctx *gin.Context) {
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

	items, err := h.todos.ListByProject(ctx.Request.Context(), projectID)

	if err != nil {
		RespondInternal(ctx, "Could not list todos")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *TodosHandler) Create(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req todo.CreateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if _, err := h.membership.Check(ctx.Request.Context(), u.ID, req.ProjectID); err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	created, err := h.todos.Create(ctx.Request.Context(), todo.NewFromCreateRequest(req, u.ID))

	if err != nil {
		RespondInternal(ctx, "Could not create todo")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"todo": created})
}

func (h *TodosHandler) Update(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	var req todo.UpdateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.todos.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if errors.Is(err, todo.ErrNotFound) {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not load todo")
		return
	}

	if _, err := h.membership.Check(ctx.Request.Context(), u.ID, t.ProjectID); err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	updated, err := h.todos.Update(ctx.Request.Context(), t.ID, req.Title, req.Done)

	if errors.Is(err, todo.ErrNotFound) {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not update todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"todo": updated})
}

func (h *TodosHandler) Delete(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	t, err := h.todos.GetByID(ctx.Request.Context(), ctx.Param("id"))

	if errors.Is(err, todo.ErrNotFound) {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not load todo")
		return
	}

	if _, err := h.membership.Check(ctx.Request.Context(), u.ID, t.ProjectID); err != nil {
		respondAccessErr(ctx, err, "Project not found")
		return
	}

	if err := h.todos.Delete(ctx.Request.Context(), t.ID); err != nil {
		RespondInternal(ctx, "Could not delete todo")
		return
	}

	ctx.Status(http.StatusNoContent)
}
