package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("message not found")

type PostMessageRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Body      string `json:"body" binding:"required,min=1,max=4000"`
}

func NewFromPostRequest(req PostMessageRequest, authorID, authorName string) Message {
	return Message{
		ID:         uuid.NewString(),
		ProjectID:  req.ProjectID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       req.Body,
		CreatedAt:  time.Now().UTC(),
	}
}
