package auth

import (
	"context"
	"errors"

	"github.com/workpadhq/workpad/internal/domain/project"
)

// ErrNotMember marks a project the user can see exists but may not touch.
var ErrNotMember = errors.New("not a project member")

type ProjectLoader interface {
	GetByID(ctx context.Context, id string) (project.Project, error)
}

// MembershipResolver gates project-scoped reads and writes. It fails
// closed: an absent project, or any storage error while loading it,
// resolves to "not a member".
type MembershipResolver struct {
	projects ProjectLoader
}

func NewMembershipResolver(projects ProjectLoader) *MembershipResolver {
	return &MembershipResolver{projects: projects}
}

// Check loads the project and verifies membership in one pass. Existence
// is decided before membership: an absent project surfaces as
// project.ErrNotFound, never as ErrNotMember.
func (m *MembershipResolver) Check(ctx context.Context, userID, projectID string) (project.Project, error) {
	if projectID == "" {
		return project.Project{}, project.ErrNotFound
	}

	p, err := m.projects.GetByID(ctx, projectID)

	if err != nil {
		return project.Project{}, err
	}

	if userID == "" || !p.HasMember(userID) {
		return project.Project{}, ErrNotMember
	}

	return p, nil
}

func (m *MembershipResolver) IsMember(ctx context.Context, userID, projectID string) bool {
	_, err := m.Check(ctx, userID, projectID)

	return err == nil
}
