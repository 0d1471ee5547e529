package realtime

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/workpadhq/workpad/internal/observability"
)

// ErrTooManyStreams is returned by Subscribe once the per-process cap is
// reached. The endpoint turns it into a 503.
var ErrTooManyStreams = errors.New("realtime stream limit reached")

// Event is a JSON-serializable broadcast payload; its "type" key names the
// event kind (chat-message, invitation-received, member-joined, ...).
type Event map[string]any

// Stream is one open client connection. SendData delivers one event frame,
// SendComment a no-op keepalive frame. Implementations must be safe for
// concurrent calls.
type Stream interface {
	SendData(payload []byte) error
	SendComment(text string) error
}

// Broadcaster is the process-wide userID -> open streams map.
//
// Delivery is best-effort and at-most-once: events go to streams that are
// open right now, nothing is queued or replayed. This state does not
// survive a restart and does not scale past one process without an
// external pub/sub; reconnecting clients re-fetch resource lists instead.
type Broadcaster struct {
	log  *slog.Logger
	prom *observability.Prom

	maxStreams int

	mu      sync.RWMutex
	streams map[string]map[Stream]struct{}
	open    int
}

func NewBroadcaster(log *slog.Logger, prom *observability.Prom, maxStreams int) *Broadcaster {
	if maxStreams <= 0 {
		maxStreams = 4096
	}

	return &Broadcaster{
		log:        log,
		prom:       prom,
		maxStreams: maxStreams,
		streams:    make(map[string]map[Stream]struct{}),
	}
}

// Subscribe registers a new open stream for userID and immediately writes
// the connection acknowledgement frame on it.
func (b *Broadcaster) Subscribe(userID string, s Stream) error {
	b.mu.Lock()

	if b.open >= b.maxStreams {
		b.mu.Unlock()
		return ErrTooManyStreams
	}

	set, ok := b.streams[userID]

	if !ok {
		set = make(map[Stream]struct{})
		b.streams[userID] = set
	}

	set[s] = struct{}{}
	b.open++
	b.mu.Unlock()

	if b.prom != nil {
		b.prom.StreamsOpen.Inc()
	}

	ack, _ := json.Marshal(map[string]string{"type": "connected", "userId": userID})

	if err := s.SendData(ack); err != nil {
		b.log.Warn("realtime ack write failed", "user_id", userID, "err", err)
		b.Unsubscribe(userID, s)
		return err
	}

	return nil
}

// Unsubscribe removes a stream; the user's entry disappears with its last
// stream so the map stays bounded over connect/disconnect cycles.
// Unknown streams are ignored, which makes it safe to call twice.
func (b *Broadcaster) Unsubscribe(userID string, s Stream) {
	b.mu.Lock()

	set, ok := b.streams[userID]

	if ok {
		if _, present := set[s]; present {
			delete(set, s)
			b.open--

			if b.prom != nil {
				b.prom.StreamsOpen.Dec()
			}
		}

		if len(set) == 0 {
			delete(b.streams, userID)
		}
	}

	b.mu.Unlock()
}

// Broadcast writes event to every stream currently open for userID. With no
// open streams it is a silent no-op. A failed write drops that one stream
// and never stops delivery to the others; errors never reach the caller.
func (b *Broadcaster) Broadcast(userID string, event any) {
	payload, err := json.Marshal(event)

	if err != nil {
		b.log.Error("realtime event marshal failed", "user_id", userID, "err", err)
		return
	}

	b.mu.RLock()

	set := b.streams[userID]
	targets := make([]Stream, 0, len(set))

	for s := range set {
		targets = append(targets, s)
	}

	b.mu.RUnlock()

	eventType := typeOf(event)

	for _, s := range targets {
		if err := s.SendData(payload); err != nil {
			// a closed stream is normal disconnect churn, not worth a log line
			if !errors.Is(err, ErrStreamClosed) {
				b.log.Warn("realtime broadcast write failed", "user_id", userID, "type", eventType, "err", err)
			}

			if b.prom != nil {
				b.prom.EventsDropped.WithLabelValues(eventType).Inc()
			}

			b.Unsubscribe(userID, s)
			continue
		}

		if b.prom != nil {
			b.prom.EventsDelivered.WithLabelValues(eventType).Inc()
		}
	}
}

// StreamCount reports how many streams userID currently has open.
func (b *Broadcaster) StreamCount(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.streams[userID])
}

func typeOf(event any) string {
	switch m := event.(type) {
	case Event:
		if t, ok := m["type"].(string); ok && t != "" {
			return t
		}
	case map[string]any:
		if t, ok := m["type"].(string); ok && t != "" {
			return t
		}
	}

	return "unknown"
}
