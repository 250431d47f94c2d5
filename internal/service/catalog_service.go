package service

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CatalogService defines the interface for browsing bookable services
type CatalogService interface {
	// ListServices returns services matching the free-text query and type filter
	ListServices(ctx context.Context, query *dto.ListServicesQuery) []dto.ServiceResponse

	// GetService returns one service by id
	GetService(ctx context.Context, id string) (*dto.ServiceResponse, error)

	// ListTypes returns "All" followed by the distinct types in catalog order
	ListTypes(ctx context.Context) []string

	// Lookup returns the domain entry for id
	Lookup(id string) (domain.Service, error)

	// Services returns the catalog in order
	Services() []domain.Service
}

// catalogService implements CatalogService over a fixed list
type catalogService struct {
	services []domain.Service
	byID     map[string]int
}

// NewCatalogService creates a catalog. Falls back to the default catalog when services is empty.
func NewCatalogService(services []domain.Service) (CatalogService, error) {
	if len(services) == 0 {
		services = domain.DefaultCatalog()
	}

	byID := make(map[string]int, len(services))
	for i := range services {
		if err := services[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if _, dup := byID[services[i].ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", services[i].ID)
		}
		byID[services[i].ID] = i
	}

	return &catalogService{
		services: append([]domain.Service(nil), services...),
		byID:     byID,
	}, nil
}

// ListServices returns services matching the query
func (s *catalogService) ListServices(ctx context.Context, query *dto.ListServicesQuery) []dto.ServiceResponse {
	_, span := telemetry.StartSpan(ctx, "service.catalog.list")
	defer span.End()

	var q, t string
	if query != nil {
		q, t = query.Query, query.Type
	}
	span.SetAttributes(attribute.String("query", q), attribute.String("type", t))

	result := make([]dto.ServiceResponse, 0, len(s.services))
	for i := range s.services {
		if s.services[i].Matches(q, t) {
			result = append(result, toServiceResponse(s.services[i]))
		}
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	return result
}

// GetService returns one service by id
func (s *catalogService) GetService(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.catalog.get")
	defer span.End()

	span.SetAttributes(attribute.String("service_id", id))

	svc, err := s.Lookup(id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	resp := toServiceResponse(svc)
	span.SetStatus(codes.Ok, "")
	return &resp, nil
}

// ListTypes returns the type filter options
func (s *catalogService) ListTypes(ctx context.Context) []string {
	_, span := telemetry.StartSpan(ctx, "service.catalog.types")
	defer span.End()

	types := []string{domain.ServiceTypeAll}
	seen := make(map[string]struct{}, len(s.services))
	for _, svc := range s.services {
		if _, ok := seen[svc.Type]; ok {
			continue
		}
		seen[svc.Type] = struct{}{}
		types = append(types, svc.Type)
	}
	return types
}

// Lookup returns the domain entry for id
func (s *catalogService) Lookup(id string) (domain.Service, error) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Service{}, fmt.Errorf("%w: %q", domain.ErrInvalidServiceReference, id)
	}
	return s.services[i], nil
}

// Services returns a copy of the catalog
func (s *catalogService) Services() []domain.Service {
	return append([]domain.Service(nil), s.services...)
}

func toServiceResponse(svc domain.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:          svc.ID,
		Type:        svc.Type,
		Name:        svc.Name,
		Location:    svc.Location,
		WaitMinutes: svc.WaitMinutes,
		Position:    svc.Position,
		Lat:         svc.Lat,
		Lng:         svc.Lng,
	}
}
