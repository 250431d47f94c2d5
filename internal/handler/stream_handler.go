package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/service"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SSE event names
const (
	eventSnapshot  = "snapshot"
	eventHeartbeat = "heartbeat"
	eventEnd       = "end"
)

// StreamHandler pushes session snapshots over server-sent events
type StreamHandler struct {
	sessionService service.SessionService
	clock          clock.Clock
	heartbeat      time.Duration
}

// StreamHandlerConfig contains configuration for the stream handler
type StreamHandlerConfig struct {
	HeartbeatInterval time.Duration // default: 15s
	Clock             clock.Clock
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(sessionService service.SessionService, cfg *StreamHandlerConfig) *StreamHandler {
	h := &StreamHandler{
		sessionService: sessionService,
		clock:          clock.Real(),
		heartbeat:      15 * time.Second,
	}
	if cfg != nil {
		if cfg.HeartbeatInterval > 0 {
			h.heartbeat = cfg.HeartbeatInterval
		}
		if cfg.Clock != nil {
			h.clock = cfg.Clock
		}
	}
	return h
}

// Stream handles GET /sessions/:session_id/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.stream")
	defer span.End()

	sessionID := c.Param("session_id")
	span.SetAttributes(attribute.String("session_id", sessionID))

	snapshots, cancel, err := h.sessionService.Subscribe(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeDomainError(c, "session.stream", err)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	heartbeat := h.clock.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	sent := 0
	for {
		select {
		case <-c.Request.Context().Done():
			span.SetAttributes(attribute.Int("snapshots_sent", sent))
			span.SetStatus(codes.Ok, "client closed")
			return
		case snap, ok := <-snapshots:
			if !ok {
				c.SSEvent(eventEnd, gin.H{"session_id": sessionID, "reason": "session ended"})
				c.Writer.Flush()
				span.SetAttributes(attribute.Int("snapshots_sent", sent))
				span.SetStatus(codes.Ok, "session ended")
				return
			}
			c.SSEvent(eventSnapshot, snap)
			c.Writer.Flush()
			sent++
		case now := <-heartbeat.C:
			c.SSEvent(eventHeartbeat, gin.H{"timestamp": now.Unix()})
			c.Writer.Flush()
		}
	}
}
