package di

import (
	"fmt"
	"time"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/handler"
	"github.com/prohmpiriya/queue-buddy/internal/service"
	"github.com/prohmpiriya/queue-buddy/internal/worker"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
	"github.com/prohmpiriya/queue-buddy/pkg/redis"
)

// Container holds all dependencies for the queue service
type Container struct {
	// Infrastructure
	Redis *redis.Client
	Clock clock.Clock

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	CatalogService service.CatalogService
	SessionService service.SessionService
	AdminService   service.AdminService

	// Handlers
	HealthHandler  *handler.HealthHandler
	CatalogHandler *handler.CatalogHandler
	SessionHandler *handler.SessionHandler
	StreamHandler  *handler.StreamHandler
	AdminHandler   *handler.AdminHandler

	// Workers
	SessionReaper *worker.SessionReaperWorker
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	ServiceName string
	Version     string

	Redis          *redis.Client // optional
	EventPublisher service.EventPublisher
	Clock          clock.Clock
	Catalog        []domain.Service // empty means the built-in catalog

	SessionConfig     *service.SessionServiceConfig
	ReaperConfig      *worker.SessionReaperConfig
	HeartbeatInterval time.Duration
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil {
		cfg = &ContainerConfig{}
	}

	c := &Container{
		Redis:          cfg.Redis,
		Clock:          cfg.Clock,
		EventPublisher: cfg.EventPublisher,
	}
	if c.Clock == nil {
		c.Clock = clock.Real()
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Initialize services
	catalog, err := service.NewCatalogService(cfg.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	c.CatalogService = catalog

	sessionCfg := &service.SessionServiceConfig{}
	if cfg.SessionConfig != nil {
		copied := *cfg.SessionConfig
		sessionCfg = &copied
	}
	if sessionCfg.Clock == nil {
		sessionCfg.Clock = c.Clock
	}
	c.SessionService = service.NewSessionService(c.CatalogService, c.EventPublisher, sessionCfg)
	c.AdminService = service.NewAdminService(c.CatalogService, c.EventPublisher, &service.AdminServiceConfig{Clock: c.Clock})

	// Initialize handlers
	if c.Redis != nil {
		c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, cfg.Version, c.Redis, c.SessionService)
	} else {
		c.HealthHandler = handler.NewHealthHandler(cfg.ServiceName, cfg.Version, nil, c.SessionService)
	}
	c.CatalogHandler = handler.NewCatalogHandler(c.CatalogService)
	c.SessionHandler = handler.NewSessionHandler(c.SessionService)
	c.StreamHandler = handler.NewStreamHandler(c.SessionService, &handler.StreamHandlerConfig{
		HeartbeatInterval: cfg.HeartbeatInterval,
		Clock:             c.Clock,
	})
	c.AdminHandler = handler.NewAdminHandler(c.AdminService)

	// Initialize workers
	reaperCfg := &worker.SessionReaperConfig{}
	if cfg.ReaperConfig != nil {
		copied := *cfg.ReaperConfig
		reaperCfg = &copied
	}
	if reaperCfg.Clock == nil {
		reaperCfg.Clock = c.Clock
	}
	c.SessionReaper = worker.NewSessionReaperWorker(c.SessionService, reaperCfg)

	return c, nil
}
