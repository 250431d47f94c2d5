package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/internal/service"
	"github.com/prohmpiriya/queue-buddy/pkg/response"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CatalogHandler handles service catalog HTTP requests
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ListServices handles GET /services?q=&type=
func (h *CatalogHandler) ListServices(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var query dto.ListServicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		invalidRequest(c, err)
		return
	}

	result := h.catalogService.ListServices(ctx, &query)

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.SuccessWithMeta(c, result, response.ListMeta{Total: len(result)})
}

// ListTypes handles GET /services/types
func (h *CatalogHandler) ListTypes(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.types")
	defer span.End()

	response.Success(c, dto.ServiceTypesResponse{Types: h.catalogService.ListTypes(ctx)})
}

// GetService handles GET /services/:id
func (h *CatalogHandler) GetService(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.catalog.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	id := c.Param("id")
	span.SetAttributes(attribute.String("service_id", id))

	result, err := h.catalogService.GetService(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeDomainError(c, "catalog.get", err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
