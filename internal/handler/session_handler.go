package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/internal/service"
	"github.com/prohmpiriya/queue-buddy/pkg/response"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SessionHandler handles session and queue HTTP requests
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

// SignIn handles POST /sessions
func (h *SessionHandler) SignIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.session.sign_in")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	result, err := h.sessionService.SignIn(ctx, &req)
	if err != nil {
		h.fail(c, span, "session.sign_in", err)
		return
	}

	span.SetAttributes(attribute.String("session_id", result.SessionID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetSession handles GET /sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctx, span := h.start(c, "handler.session.get")
	defer span.End()

	result, err := h.sessionService.GetSession(ctx, c.Param("session_id"))
	if err != nil {
		h.fail(c, span, "session.get", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// SignOut handles DELETE /sessions/:session_id
func (h *SessionHandler) SignOut(c *gin.Context) {
	ctx, span := h.start(c, "handler.session.sign_out")
	defer span.End()

	if err := h.sessionService.SignOut(ctx, c.Param("session_id")); err != nil {
		h.fail(c, span, "session.sign_out", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"message": "Signed out."})
}

// JoinQueue handles POST /sessions/:session_id/queue
func (h *SessionHandler) JoinQueue(c *gin.Context) {
	ctx, span := h.start(c, "handler.queue.join")
	defer span.End()

	var req dto.JoinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("service_id", req.ServiceID))

	result, err := h.sessionService.JoinQueue(ctx, c.Param("session_id"), &req)
	if err != nil {
		h.fail(c, span, "queue.join", err)
		return
	}

	span.SetAttributes(
		attribute.String("ticket_id", result.ID),
		attribute.Int("position", result.Position),
	)
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// LeaveQueue handles DELETE /sessions/:session_id/queue
func (h *SessionHandler) LeaveQueue(c *gin.Context) {
	ctx, span := h.start(c, "handler.queue.leave")
	defer span.End()

	result, err := h.sessionService.LeaveQueue(ctx, c.Param("session_id"))
	if err != nil {
		h.fail(c, span, "queue.leave", err)
		return
	}

	span.SetAttributes(attribute.Bool("removed", result.Success))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DismissTicket handles POST /sessions/:session_id/queue/dismiss
func (h *SessionHandler) DismissTicket(c *gin.Context) {
	ctx, span := h.start(c, "handler.queue.dismiss")
	defer span.End()

	result, err := h.sessionService.DismissTicket(ctx, c.Param("session_id"))
	if err != nil {
		h.fail(c, span, "queue.dismiss", err)
		return
	}

	span.SetAttributes(attribute.Bool("removed", result.Success))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetTicket handles GET /sessions/:session_id/ticket
func (h *SessionHandler) GetTicket(c *gin.Context) {
	ctx, span := h.start(c, "handler.queue.ticket")
	defer span.End()

	result, err := h.sessionService.GetTicket(ctx, c.Param("session_id"))
	if err != nil {
		h.fail(c, span, "queue.ticket", err)
		return
	}

	span.SetAttributes(
		attribute.Int("position", result.Position),
		attribute.Int("eta_minutes", result.ETAMinutes),
	)
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListNotifications handles GET /sessions/:session_id/notifications
func (h *SessionHandler) ListNotifications(c *gin.Context) {
	ctx, span := h.start(c, "handler.session.notifications")
	defer span.End()

	result, err := h.sessionService.ListNotifications(ctx, c.Param("session_id"))
	if err != nil {
		h.fail(c, span, "session.notifications", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, result, response.ListMeta{Total: len(result)})
}

// SubmitFeedback handles POST /sessions/:session_id/feedback
func (h *SessionHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := h.start(c, "handler.session.feedback")
	defer span.End()

	var req dto.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	result, err := h.sessionService.SubmitFeedback(ctx, c.Param("session_id"), &req)
	if err != nil {
		h.fail(c, span, "session.feedback", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// SelectAdminService handles PUT /sessions/:session_id/admin/selection
func (h *SessionHandler) SelectAdminService(c *gin.Context) {
	ctx, span := h.start(c, "handler.admin.select")
	defer span.End()

	var req dto.SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	span.SetAttributes(attribute.String("service_id", req.ServiceID))

	result, err := h.sessionService.SelectAdminService(ctx, c.Param("session_id"), &req)
	if err != nil {
		h.fail(c, span, "admin.select", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// start opens the handler span and tags it with the session id
func (h *SessionHandler) start(c *gin.Context, name string) (context.Context, trace.Span) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), name)
	c.Request = c.Request.WithContext(ctx)
	span.SetAttributes(attribute.String("session_id", c.Param("session_id")))
	return ctx, span
}

func (h *SessionHandler) fail(c *gin.Context, span trace.Span, operation string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	writeDomainError(c, operation, err)
}
