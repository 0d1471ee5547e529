package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/workpadhq/workpad/internal/domain/chat"
	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/handlers"
	"github.com/workpadhq/workpad/internal/realtime"
)

type fakeChatStore struct {
	createFn func(ctx context.Context, m chat.Message) (chat.Message, error)
	listFn   func(ctx context.Context, projectID string, limit int) ([]chat.Message, error)
}

func (f *fakeChatStore) Create(ctx context.Context, m chat.Message) (chat.Message, error) {
	if f.createFn != nil {
		return f.createFn(ctx, m)
	}

	return m, nil
}

func (f *fakeChatStore) ListByProject(ctx context.Context, projectID string, limit int) ([]chat.Message, error) {
	if f.listFn != nil {
		return f.listFn(ctx, projectID, limit)
	}

	return nil, nil
}

func TestChatPostBroadcastsToOtherMembers(t *testing.T) {
	notifier := newFakeNotifier()

	h := handlers.NewChatHandler(&fakeChatStore{}, testMembership(), notifier)

	author := user.User{ID: "member", Name: "Ada"}

	r := authedRouter(author, http.MethodPost, "/api/chat", h.Post)

	w := postJSON(r, "/api/chat", `{"projectId": "p1", "body": "hello team"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	// the other member gets the event, the author does not
	if got := notifier.eventsFor("owner"); len(got) != 1 {
		t.Fatalf("owner got %d events, want 1", len(got))
	}

	if got := notifier.eventsFor("member"); len(got) != 0 {
		t.Fatalf("author got %d events, want 0", len(got))
	}

	event, ok := notifier.eventsFor("owner")[0].(realtime.Event)

	if !ok {
		t.Fatalf("unexpected event payload type %T", notifier.eventsFor("owner")[0])
	}

	if event["type"] != "chat-message" || event["projectId"] != "p1" {
		t.Fatalf("unexpected event: %v", event)
	}

	msg, ok := event["message"].(chat.Message)

	if !ok {
		t.Fatalf("unexpected message type %T", event["message"])
	}

	if msg.Body != "hello team" || msg.AuthorName != "Ada" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestChatPostBlockedForNonMembers(t *testing.T) {
	notifier := newFakeNotifier()

	h := handlers.NewChatHandler(&fakeChatStore{}, testMembership(), notifier)

	r := authedRouter(user.User{ID: "stranger"}, http.MethodPost, "/api/chat", h.Post)

	w := postJSON(r, "/api/chat", `{"projectId": "p1", "body": "let me in"}`)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want 403", w.Code)
	}

	if len(notifier.eventsFor("owner")) != 0 {
		t.Fatal("a rejected post must not broadcast")
	}
}
