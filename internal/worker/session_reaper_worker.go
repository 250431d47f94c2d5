package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/queue-buddy/pkg/clock"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"go.uber.org/zap"
)

// SessionReaper ends idle sessions
type SessionReaper interface {
	ReapIdle(ctx context.Context, ttl time.Duration) int
}

// SessionReaperConfig contains configuration for the session reaper worker
type SessionReaperConfig struct {
	// ScanInterval is the interval between idle scans
	ScanInterval time.Duration
	// IdleTTL is how long a session may go without activity
	IdleTTL time.Duration
	Clock   clock.Clock
}

// DefaultSessionReaperConfig returns default configuration
func DefaultSessionReaperConfig() *SessionReaperConfig {
	return &SessionReaperConfig{
		ScanInterval: time.Minute,
		IdleTTL:      30 * time.Minute,
	}
}

// SessionReaperWorker periodically ends sessions nobody is using
type SessionReaperWorker struct {
	sessions SessionReaper
	config   *SessionReaperConfig
	clock    clock.Clock
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// Stats
	totalReaped   int64
	lastScanTime  time.Time
	lastReapCount int
}

// SessionReaperStats contains worker statistics
type SessionReaperStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalReaped   int64     `json:"total_reaped"`
	LastScanTime  time.Time `json:"last_scan_time"`
	LastReapCount int       `json:"last_reap_count"`
}

// NewSessionReaperWorker creates a new session reaper worker
func NewSessionReaperWorker(sessions SessionReaper, config *SessionReaperConfig) *SessionReaperWorker {
	defaults := DefaultSessionReaperConfig()
	if config == nil {
		config = defaults
	}
	if config.ScanInterval <= 0 {
		config.ScanInterval = defaults.ScanInterval
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaults.IdleTTL
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	return &SessionReaperWorker{
		sessions: sessions,
		config:   config,
		clock:    clk,
		log:      logger.Get(),
		stopCh:   make(chan struct{}),
	}
}

// Start starts the reaper loop
func (w *SessionReaperWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("session reaper already running")
	}
	w.running = true
	w.mu.Unlock()

	w.log.Info("Starting session reaper",
		zap.Duration("scan_interval", w.config.ScanInterval),
		zap.Duration("idle_ttl", w.config.IdleTTL),
	)

	// Create the ticker before returning so callers driving a fake clock see it registered
	ticker := w.clock.NewTicker(w.config.ScanInterval)

	w.wg.Add(1)
	go w.run(ctx, ticker)

	return nil
}

// Stop stops the reaper loop and waits for it to exit
func (w *SessionReaperWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping session reaper")
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("Session reaper stopped")
}

func (w *SessionReaperWorker) run(ctx context.Context, ticker *clock.Ticker) {
	defer w.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *SessionReaperWorker) reap(ctx context.Context) {
	n := w.sessions.ReapIdle(ctx, w.config.IdleTTL)

	w.mu.Lock()
	w.lastScanTime = w.clock.Now()
	w.lastReapCount = n
	w.totalReaped += int64(n)
	w.mu.Unlock()

	if n > 0 {
		w.log.Info("Reaped idle sessions", zap.Int("count", n))
	}
}

// GetStats returns worker statistics
func (w *SessionReaperWorker) GetStats() *SessionReaperStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &SessionReaperStats{
		IsRunning:     w.running,
		TotalReaped:   w.totalReaped,
		LastScanTime:  w.lastScanTime,
		LastReapCount: w.lastReapCount,
	}
}
