package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/workpadhq/workpad/internal/auth"
	"github.com/workpadhq/workpad/internal/domain/project"
	"github.com/workpadhq/workpad/internal/domain/todo"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/handlers"
)

// fakeMembership mirrors the real gate: unknown project first, then
// membership.

type fakeMembership struct {
	projects map[string]project.Project
}

func (f *fakeMembership) Check(ctx context.Context, userID, projectID string) (project.Project, error) {
	p, ok := f.projects[projectID]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if !p.HasMember(userID) {
		return project.Project{}, auth.ErrNotMember
	}

	return p, nil
}

// fakeNotifier records broadcast fan-out per user.

type fakeNotifier struct {
	mu     sync.Mutex
	events map[string][]any
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{events: make(map[string][]any)}
}

func (f *fakeNotifier) Broadcast(userID string, event any) {
	f.mu.Lock()
	f.events[userID] = append(f.events[userID], event)
	f.mu.Unlock()
}

func (f *fakeNotifier) eventsFor(userID string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.events[userID]
}

type fakeTodoStore struct {
	createFn func(ctx context.Context, t todo.Todo) (todo.Todo, error)
	getFn    func(ctx context.Context, id string) (todo.Todo, error)
	listFn   func(ctx context.Context, projectID string) ([]todo.Todo, error)
	updateFn func(ctx context.Context, id string, title *string, done *bool) (todo.Todo, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeTodoStore) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}

	return t, nil
}

func (f *fakeTodoStore) GetByID(ctx context.Context, id string) (todo.Todo, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}

	return todo.Todo{}, todo.ErrNotFound
}

func (f *fakeTodoStore) ListByProject(ctx context.Context, projectID string) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, projectID)
	}

	return nil, nil
}

func (f *fakeTodoStore) Update(ctx context.Context, id string, title *string, done *bool) (todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, title, done)
	}

	return todo.Todo{ID: id}, nil
}

func (f *fakeTodoStore) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}

	return nil
}

func testMembership() *fakeMembership {
	return &fakeMembership{projects: map[string]project.Project{
		"p1": {ID: "p1", Name: "Launch", OwnerID: "owner", CreatedBy: "owner", MemberIDs: []string{"owner", "member"}},
	}}
}

func TestTodoCreateMembershipGate(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		body           string
		wantStatusCode int
	}{
		{
			name:           "member can create",
			userID:         "member",
			body:           `{"projectId": "p1", "title": "ship it"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "non-member is forbidden",
			userID:         "stranger",
			body:           `{"projectId": "p1", "title": "ship it"}`,
			wantStatusCode: http.StatusForbidden,
		},
		{
			// existence beats membership: an unknown project must never
			// reveal whether the caller would have had access
			name:           "unknown project is a 404 even for strangers",
			userID:         "stranger",
			body:           `{"projectId": "ghost", "title": "ship it"}`,
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "missing title",
			userID:         "member",
			body:           `{"projectId": "p1"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTodosHandler(&fakeTodoStore{}, testMembership())

			r := authedRouter(user.User{ID: tt.userID}, http.MethodPost, "/api/todos", h.Create)

			w := postJSON(r, "/api/todos", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestTodoListRequiresProjectID(t *testing.T) {
	h := handlers.NewTodosHandler(&fakeTodoStore{}, testMembership())

	r := authedRouter(user.User{ID: "member"}, http.MethodGet, "/api/todos", h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestTodoListScopedByMembership(t *testing.T) {
	store := &fakeTodoStore{
		listFn: func(ctx context.Context, projectID string) ([]todo.Todo, error) {
			return []todo.Todo{{ID: "t1", ProjectID: projectID}}, nil
		},
	}

	tests := []struct {
		name           string
		userID         string
		query          string
		wantStatusCode int
	}{
		{name: "member sees todos", userID: "member", query: "projectId=p1", wantStatusCode: http.StatusOK},
		{name: "stranger gets 403", userID: "stranger", query: "projectId=p1", wantStatusCode: http.StatusForbidden},
		{name: "unknown project gets 404", userID: "member", query: "projectId=ghost", wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTodosHandler(store, testMembership())

			r := authedRouter(user.User{ID: tt.userID}, http.MethodGet, "/api/todos", h.List)

			req := httptest.NewRequest(http.MethodGet, "/api/todos?"+tt.query, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestTodoUpdateChecksExistenceBeforeMembership(t *testing.T) {
	store := &fakeTodoStore{
		getFn: func(ctx context.Context, id string) (todo.Todo, error) {
			if id == "t1" {
				return todo.Todo{ID: "t1", ProjectID: "p1"}, nil
			}

			return todo.Todo{}, todo.ErrNotFound
		},
	}

	tests := []struct {
		name           string
		userID         string
		todoID         string
		wantStatusCode int
	}{
		{name: "member updates", userID: "member", todoID: "t1", wantStatusCode: http.StatusOK},
		{name: "stranger forbidden", userID: "stranger", todoID: "t1", wantStatusCode: http.StatusForbidden},
		{name: "missing todo is 404 for anyone", userID: "stranger", todoID: "ghost", wantStatusCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewTodosHandler(store, testMembership())

			r := authedRouter(user.User{ID: tt.userID}, http.MethodPatch, "/api/todos/:id", h.Update)

			req := httptest.NewRequest(http.MethodPatch, "/api/todos/"+tt.todoID, bytes.NewBufferString(`{"done": true}`))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
