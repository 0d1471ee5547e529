package realtime

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// gatedWriter parks inside Write until released, so a test can hold a send
// mid-flight while poking the stream from another goroutine.
type gatedWriter struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedWriter) Header() http.Header { return http.Header{} }

func (g *gatedWriter) WriteHeader(int) {}

func (g *gatedWriter) Flush() {}

func (g *gatedWriter) Write(p []byte) (int, error) {
	g.entered <- struct{}{}
	<-g.release

	return len(p), nil
}

func TestSSEStreamRefusesSendsAfterClose(t *testing.T) {
	w := httptest.NewRecorder()
	s := NewSSEStream(w)

	if err := s.SendData([]byte(`{"type":"connected"}`)); err != nil {
		t.Fatalf("send before close failed: %v", err)
	}

	s.Close()

	if err := s.SendData([]byte(`{"type":"late"}`)); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("got %v, want ErrStreamClosed", err)
	}

	if err := s.SendComment("heartbeat"); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("got %v, want ErrStreamClosed", err)
	}

	body := w.Body.String()

	if strings.Count(body, "data:") != 1 || strings.Contains(body, "late") {
		t.Fatalf("write after close reached the client: %q", body)
	}
}

func TestSSEStreamCloseIsIdempotent(t *testing.T) {
	s := NewSSEStream(httptest.NewRecorder())

	s.Close()
	s.Close()

	if err := s.SendData([]byte(`{}`)); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("got %v, want ErrStreamClosed", err)
	}
}

func TestSSEStreamCloseWaitsForInFlightSend(t *testing.T) {
	gw := &gatedWriter{entered: make(chan struct{}), release: make(chan struct{})}
	s := NewSSEStream(gw)

	sendErr := make(chan error, 1)

	go func() {
		sendErr <- s.SendData([]byte(`{"type":"chat-message"}`))
	}()

	<-gw.entered // the send is parked inside Write

	closed := make(chan struct{})

	go func() {
		s.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a send was still writing")
	case <-time.After(20 * time.Millisecond):
	}

	close(gw.release)

	if err := <-sendErr; err != nil {
		t.Fatalf("in-flight send failed: %v", err)
	}

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close never returned")
	}

	if err := s.SendData([]byte(`{"type":"late"}`)); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("got %v, want ErrStreamClosed after close", err)
	}
}

func TestBroadcastDropsClosedStream(t *testing.T) {
	b := newTestBroadcaster(0)

	w := httptest.NewRecorder()
	s := NewSSEStream(w)

	if err := b.Subscribe("user-1", s); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	s.Close()

	b.Broadcast("user-1", Event{"type": "chat-message", "projectId": "p1"})

	if got := b.StreamCount("user-1"); got != 0 {
		t.Fatalf("closed stream still registered, count=%d", got)
	}

	if strings.Contains(w.Body.String(), "chat-message") {
		t.Fatalf("broadcast reached a closed stream: %q", w.Body.String())
	}
}
