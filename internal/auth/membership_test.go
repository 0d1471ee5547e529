package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/workpadhq/workpad/internal/domain/project"
)

type fakeProjectLoader struct {
	getFn func(ctx context.Context, id string) (project.Project, error)
}

func (f *fakeProjectLoader) GetByID(ctx context.Context, id string) (project.Project, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return project.Project{}, project.ErrNotFound
}

func TestMembershipCheck(t *testing.T) {
	proj := project.Project{
		ID:        "p1",
		OwnerID:   "owner",
		CreatedBy: "creator",
		MemberIDs: []string{"member"},
	}

	loader := &fakeProjectLoader{
		getFn: func(ctx context.Context, id string) (project.Project, error) {
			if id == "p1" {
				return proj, nil
			}

			return project.Project{}, project.ErrNotFound
		},
	}

	m := NewMembershipResolver(loader)

	tests := []struct {
		name      string
		userID    string
		projectID string
		wantErr   error
	}{
		{name: "owner", userID: "owner", projectID: "p1", wantErr: nil},
		{name: "creator", userID: "creator", projectID: "p1", wantErr: nil},
		{name: "listed member", userID: "member", projectID: "p1", wantErr: nil},
		{name: "stranger", userID: "stranger", projectID: "p1", wantErr: ErrNotMember},
		{name: "empty user", userID: "", projectID: "p1", wantErr: ErrNotMember},
		// existence is decided before membership
		{name: "unknown project", userID: "owner", projectID: "nope", wantErr: project.ErrNotFound},
		{name: "empty project id", userID: "owner", projectID: "", wantErr: project.ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Check(context.Background(), tt.userID, tt.projectID)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got err %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMembershipFailsClosedOnStorageError(t *testing.T) {
	loader := &fakeProjectLoader{
		getFn: func(ctx context.Context, id string) (project.Project, error) {
			return project.Project{}, errors.New("db down")
		},
	}

	m := NewMembershipResolver(loader)

	if m.IsMember(context.Background(), "owner", "p1") {
		t.Fatal("a storage error must resolve to not-a-member")
	}
}
