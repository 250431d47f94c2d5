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
)

// AdminHandler handles admin queue HTTP requests
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListQueues handles GET /admin/queues
func (h *AdminHandler) ListQueues(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.admin.list")
	defer span.End()

	result := h.adminService.ListQueues(ctx)
	response.SuccessWithMeta(c, result, response.ListMeta{Total: len(result)})
}

// GetQueue handles GET /admin/queues/:service_id
func (h *AdminHandler) GetQueue(c *gin.Context) {
	h.serve(c, "handler.admin.get", h.adminService.GetQueue)
}

// CallNext handles POST /admin/queues/:service_id/call-next
func (h *AdminHandler) CallNext(c *gin.Context) {
	h.serve(c, "handler.admin.call_next", h.adminService.CallNext)
}

// Skip handles POST /admin/queues/:service_id/skip
func (h *AdminHandler) Skip(c *gin.Context) {
	h.serve(c, "handler.admin.skip", h.adminService.Skip)
}

func (h *AdminHandler) serve(
	c *gin.Context,
	spanName string,
	op func(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error),
) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), spanName)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	serviceID := c.Param("service_id")
	span.SetAttributes(attribute.String("service_id", serviceID))

	result, err := op(ctx, serviceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeDomainError(c, spanName, err)
		return
	}

	span.SetAttributes(
		attribute.Int("current_served_number", result.CurrentServedNumber),
		attribute.Int("waiting_count", result.WaitingCount),
	)
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
