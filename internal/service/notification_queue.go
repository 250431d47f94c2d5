package service

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
)

// notificationSeq disambiguates ids created in the same millisecond
var notificationSeq atomic.Uint64

// NotificationQueueConfig contains configuration for a notification queue
type NotificationQueueConfig struct {
	Capacity int           // Max retained notifications (default: 3)
	TTL      time.Duration // Lifetime of one notification (default: 4s)
}

type notificationEntry struct {
	notification domain.Notification
	timer        *clock.Timer
}

// NotificationQueue is a bounded, newest-first list of expiring messages
type NotificationQueue struct {
	mu       sync.Mutex
	clock    clock.Clock
	capacity int
	ttl      time.Duration
	items    []notificationEntry
	closed   bool

	// onExpire runs after a timer removes an entry, outside the queue lock
	onExpire func()
}

// NewNotificationQueue creates a notification queue
func NewNotificationQueue(clk clock.Clock, cfg *NotificationQueueConfig, onExpire func()) *NotificationQueue {
	capacity := domain.DefaultNotificationCap
	ttl := domain.DefaultNotificationTTL

	if cfg != nil {
		if cfg.Capacity > 0 {
			capacity = cfg.Capacity
		}
		if cfg.TTL > 0 {
			ttl = cfg.TTL
		}
	}
	if clk == nil {
		clk = clock.Real()
	}

	return &NotificationQueue{
		clock:    clk,
		capacity: capacity,
		ttl:      ttl,
		onExpire: onExpire,
	}
}

// Push prepends a message and schedules its expiry. Returns the notification id.
func (q *NotificationQueue) Push(message string) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	n := domain.Notification{
		ID:        strconv.FormatInt(now.UnixMilli(), 10) + "-" + strconv.FormatUint(notificationSeq.Add(1), 10),
		Message:   message,
		CreatedAt: now,
	}
	if q.closed {
		return n.ID
	}

	id := n.ID
	entry := notificationEntry{
		notification: n,
		timer: q.clock.AfterFunc(q.ttl, func() {
			if q.Expire(id) && q.onExpire != nil {
				q.onExpire()
			}
		}),
	}

	q.items = append([]notificationEntry{entry}, q.items...)
	for len(q.items) > q.capacity {
		evicted := q.items[len(q.items)-1]
		evicted.timer.Stop()
		q.items = q.items[:len(q.items)-1]
	}

	metrics.RecordNotification()
	return id
}

// Expire removes the notification if present. Reports whether anything was removed.
func (q *NotificationQueue) Expire(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := range q.items {
		if q.items[i].notification.ID != id {
			continue
		}
		q.items[i].timer.Stop()
		q.items = append(q.items[:i], q.items[i+1:]...)
		return true
	}
	return false
}

// List returns a newest-first snapshot
func (q *NotificationQueue) List() []domain.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]domain.Notification, len(q.items))
	for i := range q.items {
		out[i] = q.items[i].notification
	}
	return out
}

// Len returns the number of retained notifications
func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops all expiry timers and drops the contents. Later pushes are discarded.
func (q *NotificationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		item.timer.Stop()
	}
	q.items = nil
	q.closed = true
}
