package project

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"ownerId"`
	CreatedBy   string    `json:"createdBy"`
	MemberIDs   []string  `json:"memberIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("project not found")

// HasMember reports whether userID may access the project's resources.
// The owner and the creator are members even when not listed.
func (p Project) HasMember(userID string) bool {
	if userID == "" {
		return false
	}

	if userID == p.OwnerID || userID == p.CreatedBy {
		return true
	}

	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}

	return false
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
}

type AddMemberRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func NewFromCreateRequest(req CreateProjectRequest, creatorID string) Project {
	now := time.Now().UTC()

	return Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     creatorID,
		CreatedBy:   creatorID,
		MemberIDs:   []string{creatorID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
