package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/di"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/internal/service"
	"github.com/prohmpiriya/queue-buddy/internal/worker"
	"github.com/prohmpiriya/queue-buddy/pkg/config"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/prohmpiriya/queue-buddy/pkg/middleware"
	pkgredis "github.com/prohmpiriya/queue-buddy/pkg/redis"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       cfg.LogLevel(),
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Queue Buddy...", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Tracing disabled", zap.Error(err))
	}

	// Redis backs the write-route rate limiter only
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(ctx, &pkgredis.Config{
			Host:          cfg.Redis.Host,
			Port:          cfg.Redis.Port,
			Password:      cfg.Redis.Password,
			DB:            cfg.Redis.DB,
			PoolSize:      cfg.Redis.PoolSize,
			DialTimeout:   cfg.Redis.DialTimeout,
			MaxRetries:    3,
			RetryInterval: time.Second,
		})
		if err != nil {
			appLog.Warn("Redis connection failed, rate limiting disabled", zap.Error(err))
			redisClient = nil
		} else {
			appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
		} else {
			eventPublisher = kafkaPublisher
			appLog.Info("Kafka event publisher connected", zap.String("topic", cfg.Kafka.Topic))
		}
	}

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		ServiceName:    cfg.App.Name,
		Version:        cfg.App.Version,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		SessionConfig: &service.SessionServiceConfig{
			TickInterval:    cfg.Queue.TickInterval,
			NotificationTTL: cfg.Queue.NotificationTTL,
			NotificationCap: cfg.Queue.NotificationCap,
		},
		ReaperConfig: &worker.SessionReaperConfig{
			ScanInterval: cfg.Session.ReapInterval,
			IdleTTL:      cfg.Session.IdleTTL,
		},
		HeartbeatInterval: cfg.Session.HeartbeatInterval,
	})
	if err != nil {
		appLog.Fatal("Failed to build container", zap.Error(err))
	}

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	if err := container.SessionReaper.Start(workerCtx); err != nil {
		appLog.Fatal("Failed to start session reaper", zap.Error(err))
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(appLog, "/health", "/ready", "/metrics"))
	router.Use(middleware.CORS())
	router.Use(telemetry.TracingMiddleware())
	router.Use(metrics.Middleware())

	// Redis-backed guards for mutating routes
	var writeGuards []gin.HandlerFunc
	if redisClient != nil {
		writeGuards = append(writeGuards,
			middleware.RateLimit(redisClient.Client(), middleware.RateLimitConfig{
				Requests:  cfg.Redis.RateLimitRequest,
				Window:    cfg.Redis.RateLimitWindow,
				KeyPrefix: "queue-buddy:ratelimit:",
			}, appLog),
			middleware.Idempotency(redisClient.Client(), middleware.IdempotencyConfig{
				KeyPrefix: "queue-buddy:idempotency:",
			}, appLog),
		)
	}

	registerRoutes(router, container, writeGuards...)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Queue Buddy listening on %s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	container.SessionReaper.Stop()

	// Ending sessions closes open streams, which lets Shutdown drain them
	container.SessionService.Shutdown(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := eventPublisher.Close(); err != nil {
		appLog.Warn("Failed to close event publisher", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLog.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Failed to flush traces", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

// registerRoutes mounts every endpoint. guards run ahead of mutating routes.
func registerRoutes(router *gin.Engine, c *di.Container, guards ...gin.HandlerFunc) {
	guarded := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guards...), h)
	}

	router.GET("/health", c.HealthHandler.Health)
	router.GET("/ready", c.HealthHandler.Ready)
	router.GET("/metrics", metrics.Handler())

	v1 := router.Group("/api/v1")

	services := v1.Group("/services")
	{
		services.GET("", c.CatalogHandler.ListServices)
		services.GET("/types", c.CatalogHandler.ListTypes)
		services.GET("/:id", c.CatalogHandler.GetService)
	}

	sessions := v1.Group("/sessions")
	{
		sessions.POST("", guarded(c.SessionHandler.SignIn)...)
		sessions.GET("/:session_id", c.SessionHandler.GetSession)
		sessions.DELETE("/:session_id", c.SessionHandler.SignOut)

		sessions.POST("/:session_id/queue", guarded(c.SessionHandler.JoinQueue)...)
		sessions.DELETE("/:session_id/queue", guarded(c.SessionHandler.LeaveQueue)...)
		sessions.POST("/:session_id/queue/dismiss", guarded(c.SessionHandler.DismissTicket)...)
		sessions.GET("/:session_id/ticket", c.SessionHandler.GetTicket)
		sessions.GET("/:session_id/notifications", c.SessionHandler.ListNotifications)
		sessions.POST("/:session_id/feedback", guarded(c.SessionHandler.SubmitFeedback)...)
		sessions.GET("/:session_id/stream", c.StreamHandler.Stream)
		sessions.PUT("/:session_id/admin/selection", guarded(c.SessionHandler.SelectAdminService)...)
	}

	admin := v1.Group("/admin/queues")
	{
		admin.GET("", c.AdminHandler.ListQueues)
		admin.GET("/:service_id", c.AdminHandler.GetQueue)
		admin.POST("/:service_id/call-next", guarded(c.AdminHandler.CallNext)...)
		admin.POST("/:service_id/skip", guarded(c.AdminHandler.Skip)...)
	}
}
