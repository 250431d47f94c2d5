package service

import (
	"sync"
	"time"

	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
)

// session is the explicit context of one signed-in user.
// Lock order: mu, then the notification queue, then subMu.
type session struct {
	id        string
	profile   domain.Profile
	createdAt time.Time

	mu             sync.Mutex
	ticket         *domain.Ticket
	generation     uint64 // bumped whenever the ticket is replaced or cleared
	tickTimer      *clock.Timer
	notifications  *NotificationQueue
	adminServiceID string
	feedback       []domain.Feedback
	lastActivity   time.Time
	version        uint64
	ended          bool

	subMu      sync.Mutex
	subs       map[uint64]*subscriber
	nextSubID  uint64
	subsClosed bool
}

type subscriber struct {
	ch          chan *dto.SessionResponse
	lastVersion uint64
}

// clearTicketLocked cancels the tick and removes the ticket. Returns the removed ticket, if any.
func (sess *session) clearTicketLocked() *domain.Ticket {
	sess.generation++
	sess.tickTimer.Stop()
	sess.tickTimer = nil

	old := sess.ticket
	sess.ticket = nil
	return old
}

func (sess *session) snapshotLocked() *dto.SessionResponse {
	return &dto.SessionResponse{
		SessionID:      sess.id,
		Version:        sess.version,
		Name:           sess.profile.Name,
		Phone:          sess.profile.Phone,
		Ticket:         toTicketResponse(sess.ticket),
		Notifications:  toNotificationResponses(sess.notifications.List()),
		AdminServiceID: sess.adminServiceID,
		CreatedAt:      sess.createdAt,
		LastActivityAt: sess.lastActivity,
	}
}

// addSubscriber must be called with mu held so no change slips between the
// initial snapshot and registration.
func (sess *session) addSubscriber(initial *dto.SessionResponse, buffer int) (<-chan *dto.SessionResponse, func(), bool) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()

	if sess.subsClosed {
		return nil, nil, false
	}
	if sess.subs == nil {
		sess.subs = make(map[uint64]*subscriber)
	}

	sess.nextSubID++
	id := sess.nextSubID
	sub := &subscriber{ch: make(chan *dto.SessionResponse, buffer), lastVersion: initial.Version}
	sub.ch <- initial
	sess.subs[id] = sub
	metrics.StreamSubscribers.Inc()

	cancel := func() {
		sess.subMu.Lock()
		defer sess.subMu.Unlock()
		if s, ok := sess.subs[id]; ok {
			delete(sess.subs, id)
			close(s.ch)
			metrics.StreamSubscribers.Dec()
		}
	}
	return sub.ch, cancel, true
}

// broadcast delivers snap without blocking. Slow subscribers miss updates;
// stale snapshots are never delivered after newer ones.
func (sess *session) broadcast(snap *dto.SessionResponse) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()

	for _, sub := range sess.subs {
		if snap.Version <= sub.lastVersion {
			continue
		}
		select {
		case sub.ch <- snap:
			sub.lastVersion = snap.Version
		default:
		}
	}
}

func (sess *session) closeSubscribers() {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()

	for id, sub := range sess.subs {
		close(sub.ch)
		delete(sess.subs, id)
		metrics.StreamSubscribers.Dec()
	}
	sess.subsClosed = true
}

func (sess *session) hasSubscribers() bool {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	return len(sess.subs) > 0
}

func (sess *session) idleFor(now time.Time) time.Duration {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return now.Sub(sess.lastActivity)
}

func toTicketResponse(t *domain.Ticket) *dto.TicketResponse {
	if t == nil {
		return nil
	}
	return &dto.TicketResponse{
		ID:          t.ID,
		ServiceID:   t.ServiceID,
		ServiceType: t.ServiceType,
		ServiceName: t.ServiceName,
		Location:    t.Location,
		Number:      t.Number,
		Position:    t.Position,
		ETAMinutes:  t.ETAMinutes,
		Progress:    t.Progress(),
		IsTurn:      t.IsTurn(),
		CreatedAt:   t.CreatedAt,
	}
}

func toNotificationResponses(list []domain.Notification) []dto.NotificationResponse {
	out := make([]dto.NotificationResponse, len(list))
	for i, n := range list {
		out[i] = dto.NotificationResponse{ID: n.ID, Message: n.Message, CreatedAt: n.CreatedAt}
	}
	return out
}
