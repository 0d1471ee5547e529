package handlers_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/workpadhq/workpad/internal/domain/user"
	"github.com/workpadhq/workpad/internal/http/handlers"
	"github.com/workpadhq/workpad/internal/realtime"
)

func newTestBroadcaster(maxStreams int) *realtime.Broadcaster {
	return realtime.NewBroadcaster(slog.New(slog.DiscardHandler), nil, maxStreams)
}

func serveUpdates(t *testing.T, b *realtime.Broadcaster, heartbeat time.Duration, ctx context.Context) *httptest.ResponseRecorder {
	t.Helper()

	h := handlers.NewRealtimeHandler(b, heartbeat)

	r := authedRouter(user.User{ID: "user-1"}, http.MethodGet, "/api/realtime/updates", h.Updates)

	req := httptest.NewRequest(http.MethodGet, "/api/realtime/updates", nil).WithContext(ctx)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestRealtimeUpdatesWritesAckAndHeaders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the handler returns right after the ack

	w := serveUpdates(t, newTestBroadcaster(0), time.Minute, ctx)

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("got Content-Type %q, want text/event-stream", got)
	}

	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("got Cache-Control %q, want no-cache", got)
	}

	body := w.Body.String()

	if !strings.HasPrefix(body, "data: ") {
		t.Fatalf("expected an SSE data frame, got %q", body)
	}

	if !strings.Contains(body, `"type":"connected"`) || !strings.Contains(body, `"userId":"user-1"`) {
		t.Fatalf("ack frame missing, got %q", body)
	}

	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("SSE frames end with a blank line, got %q", body)
	}
}

func TestRealtimeUpdatesStreamCleanupOnDisconnect(t *testing.T) {
	b := newTestBroadcaster(0)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		serveUpdates(t, b, time.Minute, ctx)
		close(done)
	}()

	// wait for the subscription to land
	deadline := time.After(time.Second)

	for b.StreamCount("user-1") == 0 {
		select {
		case <-deadline:
			t.Fatal("stream never registered")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	<-done

	if b.StreamCount("user-1") != 0 {
		t.Fatal("disconnect must unsubscribe the stream")
	}
}

func TestRealtimeUpdatesSendsHeartbeats(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	w := serveUpdates(t, newTestBroadcaster(0), 5*time.Millisecond, ctx)

	if !strings.Contains(w.Body.String(), ": heartbeat\n\n") {
		t.Fatalf("expected heartbeat comment frames, got %q", w.Body.String())
	}
}

func TestRealtimeUpdatesRejectsWhenAtCapacity(t *testing.T) {
	b := newTestBroadcaster(1)

	// fill the only slot
	occupied := &recordingStream{}

	if err := b.Subscribe("someone-else", occupied); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := serveUpdates(t, b, time.Minute, ctx)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want 503, body=%s", w.Code, w.Body.String())
	}
}

type recordingStream struct{}

func (recordingStream) SendData([]byte) error    { return nil }
func (recordingStream) SendComment(string) error { return nil }
