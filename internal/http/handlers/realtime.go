package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/workpadhq/workpad/internal/http/middlewares"
	"github.com/workpadhq/workpad/internal/realtime"
)

const defaultHeartbeatEvery = 30 * time.Second

type StreamRegistry interface {
	Subscribe(userID string, s realtime.Stream) error
	Unsubscribe(userID string, s realtime.Stream)
}

type RealtimeHandler struct {
	streams        StreamRegistry
	heartbeatEvery time.Duration
}

func NewRealtimeHandler(streams StreamRegistry, heartbeatEvery time.Duration) *RealtimeHandler {
	if heartbeatEvery <= 0 {
		heartbeatEvery = defaultHeartbeatEvery
	}

	return &RealtimeHandler{streams: streams, heartbeatEvery: heartbeatEvery}
}

// Updates holds the connection open and relays events for the authenticated
// user until the client goes away.
func (h *RealtimeHandler) Updates(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthenticated", "Please sign in")
		return
	}

	stream := realtime.NewSSEStream(ctx.Writer)

	if stream == nil {
		RespondInternal(ctx, "Streaming unsupported")
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	// Subscribe writes the connection ack, so headers must be set first.
	err := h.streams.Subscribe(u.ID, stream)

	if errors.Is(err, realtime.ErrTooManyStreams) {
		RespondError(ctx, http.StatusServiceUnavailable, "too_many_streams", "Too many open connections, try again shortly", nil)
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not open stream")
		return
	}

	defer h.streams.Unsubscribe(u.ID, stream)
	// runs first on exit: gin recycles ctx.Writer after the handler
	// returns, so late broadcasts must be fenced before we leave
	defer stream.Close()

	ticker := time.NewTicker(h.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case <-ticker.C:
			if err := stream.SendComment("heartbeat"); err != nil {
				return
			}
		}
	}
}
