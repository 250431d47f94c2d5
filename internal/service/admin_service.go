package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// AdminService defines the interface for the per-service serving counters
type AdminService interface {
	// ListQueues returns counters for every service in catalog order
	ListQueues(ctx context.Context) []dto.AdminQueueResponse

	// GetQueue returns counters for one service
	GetQueue(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error)

	// CallNext serves the next number and removes one waiter
	CallNext(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error)

	// Skip advances the serial without removing a waiter
	Skip(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error)
}

// adminService implements AdminService
type adminService struct {
	catalog   CatalogService
	publisher EventPublisher
	clock     clock.Clock
	log       *logger.Logger

	mu     sync.Mutex
	states map[string]domain.AdminQueueState
}

// AdminServiceConfig contains configuration for the admin service
type AdminServiceConfig struct {
	Clock  clock.Clock
	Logger *logger.Logger
}

// NewAdminService creates an admin service seeded from the catalog baselines
func NewAdminService(catalog CatalogService, publisher EventPublisher, cfg *AdminServiceConfig) AdminService {
	clk := clock.Real()
	log := logger.Get()
	if cfg != nil {
		if cfg.Clock != nil {
			clk = cfg.Clock
		}
		if cfg.Logger != nil {
			log = cfg.Logger
		}
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}

	services := catalog.Services()
	states := make(map[string]domain.AdminQueueState, len(services))
	for _, svc := range services {
		states[svc.ID] = domain.NewAdminQueueState(svc)
	}

	return &adminService{
		catalog:   catalog,
		publisher: publisher,
		clock:     clk,
		log:       log,
		states:    states,
	}
}

// ListQueues returns counters for every service
func (s *adminService) ListQueues(ctx context.Context) []dto.AdminQueueResponse {
	_, span := telemetry.StartSpan(ctx, "service.admin.list")
	defer span.End()

	services := s.catalog.Services()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]dto.AdminQueueResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, toAdminQueueResponse(svc, s.states[svc.ID]))
	}
	return result
}

// GetQueue returns counters for one service
func (s *adminService) GetQueue(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.admin.get")
	defer span.End()

	span.SetAttributes(attribute.String("service_id", serviceID))

	svc, err := s.catalog.Lookup(serviceID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.Lock()
	state := s.states[serviceID]
	s.mu.Unlock()

	resp := toAdminQueueResponse(svc, state)
	span.SetStatus(codes.Ok, "")
	return &resp, nil
}

// CallNext serves the next number
func (s *adminService) CallNext(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	return s.mutate(ctx, "call_next", domain.EventAdminCalledNext, serviceID, domain.AdminQueueState.CallNext)
}

// Skip advances the serial only
func (s *adminService) Skip(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	return s.mutate(ctx, "skip", domain.EventAdminSkipped, serviceID, domain.AdminQueueState.Skip)
}

func (s *adminService) mutate(
	ctx context.Context,
	operation string,
	eventType domain.QueueEventType,
	serviceID string,
	apply func(domain.AdminQueueState) domain.AdminQueueState,
) (*dto.AdminQueueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin."+operation)
	defer span.End()

	span.SetAttributes(attribute.String("service_id", serviceID))

	svc, err := s.catalog.Lookup(serviceID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.mu.Lock()
	state := apply(s.states[serviceID])
	s.states[serviceID] = state
	s.mu.Unlock()

	metrics.RecordAdminOperation(operation, serviceID)

	event := &domain.QueueEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		ServiceID: serviceID,
		Payload:   state,
		Timestamp: s.clock.Now(),
	}
	err = s.publisher.Publish(context.WithoutCancel(ctx), event)
	metrics.RecordEventPublished(string(eventType), err)
	if err != nil {
		s.log.Warn("failed to publish admin event",
			zap.String("event_type", string(eventType)),
			zap.String("service_id", serviceID),
			zap.Error(err),
		)
	}

	span.SetAttributes(
		attribute.Int("current_served_number", state.CurrentServedNumber),
		attribute.Int("waiting_count", state.WaitingCount),
	)
	span.SetStatus(codes.Ok, "")

	resp := toAdminQueueResponse(svc, state)
	return &resp, nil
}

func toAdminQueueResponse(svc domain.Service, state domain.AdminQueueState) dto.AdminQueueResponse {
	return dto.AdminQueueResponse{
		ServiceID:           svc.ID,
		ServiceName:         svc.Name,
		CurrentServedNumber: state.CurrentServedNumber,
		WaitingCount:        state.WaitingCount,
		AverageWaitMinutes:  state.AverageWaitMinutes,
	}
}
