package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SessionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockSessionService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockSessionService) SignOut(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockSessionService) JoinQueue(ctx context.Context, sessionID string, req *dto.JoinQueueRequest) (*dto.TicketResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TicketResponse), args.Error(1)
}

func (m *MockSessionService) LeaveQueue(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LeaveQueueResponse), args.Error(1)
}

func (m *MockSessionService) DismissTicket(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LeaveQueueResponse), args.Error(1)
}

func (m *MockSessionService) GetTicket(ctx context.Context, sessionID string) (*dto.TicketResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TicketResponse), args.Error(1)
}

func (m *MockSessionService) ListNotifications(ctx context.Context, sessionID string) ([]dto.NotificationResponse, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.NotificationResponse), args.Error(1)
}

func (m *MockSessionService) SubmitFeedback(ctx context.Context, sessionID string, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.FeedbackResponse), args.Error(1)
}

func (m *MockSessionService) SelectAdminService(ctx context.Context, sessionID string, req *dto.SelectServiceRequest) (*dto.SessionResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResponse), args.Error(1)
}

func (m *MockSessionService) Subscribe(ctx context.Context, sessionID string) (<-chan *dto.SessionResponse, func(), error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(<-chan *dto.SessionResponse), args.Get(1).(func()), args.Error(2)
}

func (m *MockSessionService) ReapIdle(ctx context.Context, ttl time.Duration) int {
	args := m.Called(ctx, ttl)
	return args.Int(0)
}

func (m *MockSessionService) ActiveSessions() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockSessionService) Shutdown(ctx context.Context) {
	m.Called(ctx)
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListServices(ctx context.Context, query *dto.ListServicesQuery) []dto.ServiceResponse {
	args := m.Called(ctx, query)
	return args.Get(0).([]dto.ServiceResponse)
}

func (m *MockCatalogService) GetService(ctx context.Context, id string) (*dto.ServiceResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ServiceResponse), args.Error(1)
}

func (m *MockCatalogService) ListTypes(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockCatalogService) Lookup(id string) (domain.Service, error) {
	args := m.Called(id)
	return args.Get(0).(domain.Service), args.Error(1)
}

func (m *MockCatalogService) Services() []domain.Service {
	args := m.Called()
	return args.Get(0).([]domain.Service)
}

// MockAdminService is a mock implementation of AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ListQueues(ctx context.Context) []dto.AdminQueueResponse {
	args := m.Called(ctx)
	return args.Get(0).([]dto.AdminQueueResponse)
}

func (m *MockAdminService) GetQueue(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdminQueueResponse), args.Error(1)
}

func (m *MockAdminService) CallNext(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdminQueueResponse), args.Error(1)
}

func (m *MockAdminService) Skip(ctx context.Context, serviceID string) (*dto.AdminQueueResponse, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AdminQueueResponse), args.Error(1)
}
