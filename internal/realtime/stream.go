package realtime

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrStreamClosed is returned by sends that arrive after Close. The
// broadcaster treats it like any other write failure and drops the stream.
var ErrStreamClosed = errors.New("stream closed")

// SSEStream adapts an http.ResponseWriter to the Stream interface, writing
// text/event-stream frames. The mutex serializes broadcast and heartbeat
// writes so each stream observes events in the order the server issued
// them.
//
// The handler must Close the stream before returning: gin recycles the
// ResponseWriter once the handler exits, and a broadcast that snapshotted
// this stream may still try to send afterwards. Close makes those sends
// fail instead of writing into another request's response.
type SSEStream struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	f      http.Flusher
	closed bool
}

// NewSSEStream returns nil when the writer cannot flush, which a streaming
// endpoint must treat as an unsupported client.
func NewSSEStream(w http.ResponseWriter) *SSEStream {
	f, ok := w.(http.Flusher)

	if !ok {
		return nil
	}

	return &SSEStream{w: w, f: f}
}

// Close marks the stream dead. It waits for an in-flight send to finish,
// so once it returns no write will touch the underlying writer again.
// Closing twice is a no-op.
func (s *SSEStream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *SSEStream) SendData(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}

	s.f.Flush()
	return nil
}

func (s *SSEStream) SendComment(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}

	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}

	s.f.Flush()
	return nil
}
