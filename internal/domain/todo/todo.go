package todo

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("todo not found")

type CreateTodoRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Title     string `json:"title" binding:"required,min=1,max=500"`
}

type UpdateTodoRequest struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=500"`
	Done  *bool   `json:"done"`
}

func NewFromCreateRequest(req CreateTodoRequest, creatorID string) Todo {
	now := time.Now().UTC()

	return Todo{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Title:     req.Title,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
