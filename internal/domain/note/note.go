package note

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("note not found")

type CreateNoteRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Body      string `json:"body" binding:"omitempty,max=50000"`
}

type UpdateNoteRequest struct {
	Title *string `json:"title" binding:"omitempty,min=1,max=200"`
	Body  *string `json:"body" binding:"omitempty,max=50000"`
}

func NewFromCreateRequest(req CreateNoteRequest, creatorID string) Note {
	now := time.Now().UTC()

	return Note{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Body:      req.Body,
		CreatedBy: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
