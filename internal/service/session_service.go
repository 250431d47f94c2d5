package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/dto"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/pkg/clock"
	"github.com/prohmpiriya/queue-buddy/pkg/logger"
	"github.com/prohmpiriya/queue-buddy/pkg/random"
	"github.com/prohmpiriya/queue-buddy/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Reasons a ticket or session ends
const (
	reasonLeft      = "left"
	reasonDismissed = "dismissed"
	reasonReplaced  = "replaced"
	reasonSignedOut = "signed_out"
	reasonReaped    = "reaped"
	reasonShutdown  = "shutdown"
)

// SessionService defines the interface for session-scoped queue operations
type SessionService interface {
	// SignIn validates the profile and opens a session
	SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SessionResponse, error)

	// GetSession returns the session snapshot
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)

	// SignOut tears the session down
	SignOut(ctx context.Context, sessionID string) error

	// JoinQueue issues a ticket for a service, replacing any live ticket
	JoinQueue(ctx context.Context, sessionID string, req *dto.JoinQueueRequest) (*dto.TicketResponse, error)

	// LeaveQueue removes the live ticket. No-op without one.
	LeaveQueue(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error)

	// DismissTicket clears the ticket once the visit is done
	DismissTicket(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error)

	// GetTicket returns the live ticket
	GetTicket(ctx context.Context, sessionID string) (*dto.TicketResponse, error)

	// ListNotifications returns the notifications newest first
	ListNotifications(ctx context.Context, sessionID string) ([]dto.NotificationResponse, error)

	// SubmitFeedback records feedback about the live ticket
	SubmitFeedback(ctx context.Context, sessionID string, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)

	// SelectAdminService changes the service shown in the admin view
	SelectAdminService(ctx context.Context, sessionID string, req *dto.SelectServiceRequest) (*dto.SessionResponse, error)

	// Subscribe streams snapshots after every change. The channel closes when
	// cancel is called or the session ends.
	Subscribe(ctx context.Context, sessionID string) (<-chan *dto.SessionResponse, func(), error)

	// ReapIdle ends sessions idle for longer than ttl that have no open stream
	ReapIdle(ctx context.Context, ttl time.Duration) int

	// ActiveSessions returns the number of open sessions
	ActiveSessions() int

	// Shutdown ends every session
	Shutdown(ctx context.Context)
}

// sessionService implements SessionService
type sessionService struct {
	catalog   CatalogService
	publisher EventPublisher
	clock     clock.Clock
	rand      random.Source
	log       *logger.Logger

	tickInterval     time.Duration
	notificationCfg  NotificationQueueConfig
	subscriberBuffer int

	mu       sync.RWMutex
	sessions map[string]*session
}

// SessionServiceConfig contains configuration for the session service
type SessionServiceConfig struct {
	TickInterval     time.Duration // Simulated position update period (default: 4s)
	NotificationTTL  time.Duration // Notification lifetime (default: 4s)
	NotificationCap  int           // Max retained notifications (default: 3)
	SubscriberBuffer int           // Snapshot buffer per stream (default: 8)

	Clock  clock.Clock
	Random random.Source
	Logger *logger.Logger
}

// NewSessionService creates a new session service
func NewSessionService(catalog CatalogService, publisher EventPublisher, cfg *SessionServiceConfig) SessionService {
	svc := &sessionService{
		catalog:          catalog,
		publisher:        publisher,
		clock:            clock.Real(),
		rand:             random.New(),
		log:              logger.Get(),
		tickInterval:     domain.DefaultTickInterval,
		notificationCfg:  NotificationQueueConfig{Capacity: domain.DefaultNotificationCap, TTL: domain.DefaultNotificationTTL},
		subscriberBuffer: 8,
		sessions:         make(map[string]*session),
	}

	if cfg != nil {
		if cfg.TickInterval > 0 {
			svc.tickInterval = cfg.TickInterval
		}
		if cfg.NotificationTTL > 0 {
			svc.notificationCfg.TTL = cfg.NotificationTTL
		}
		if cfg.NotificationCap > 0 {
			svc.notificationCfg.Capacity = cfg.NotificationCap
		}
		if cfg.SubscriberBuffer > 0 {
			svc.subscriberBuffer = cfg.SubscriberBuffer
		}
		if cfg.Clock != nil {
			svc.clock = cfg.Clock
		}
		if cfg.Random != nil {
			svc.rand = cfg.Random
		}
		if cfg.Logger != nil {
			svc.log = cfg.Logger
		}
	}
	if svc.publisher == nil {
		svc.publisher = NewNoOpEventPublisher()
	}

	return svc
}

// SignIn validates the profile and opens a session
func (s *sessionService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.SessionResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.sign_in")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid name")
		return nil, domain.ErrInvalidName
	}

	profile, err := domain.NewProfile(req.Name, req.Phone)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := s.clock.Now()
	sess := &session{
		id:           uuid.New().String(),
		profile:      profile,
		createdAt:    now,
		lastActivity: now,
	}
	if services := s.catalog.Services(); len(services) > 0 {
		sess.adminServiceID = services[0].ID
	}
	sess.notifications = NewNotificationQueue(s.clock, &s.notificationCfg, func() {
		s.notificationExpired(sess)
	})

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()

	sess.mu.Lock()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	s.publish(ctx, domain.EventSessionStarted, sess.id, nil, map[string]any{"name": profile.Name})

	span.SetAttributes(attribute.String("session_id", sess.id))
	span.SetStatus(codes.Ok, "")
	return snap, nil
}

// GetSession returns the session snapshot
func (s *sessionService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.session.get")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ended {
		span.SetStatus(codes.Error, domain.ErrSessionNotFound.Error())
		return nil, domain.ErrSessionNotFound
	}
	sess.lastActivity = s.clock.Now()

	span.SetStatus(codes.Ok, "")
	return sess.snapshotLocked(), nil
}

// SignOut tears the session down
func (s *sessionService) SignOut(ctx context.Context, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.session.sign_out")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		span.SetStatus(codes.Error, domain.ErrSessionNotFound.Error())
		return domain.ErrSessionNotFound
	}

	s.endSession(ctx, sess, reasonSignedOut)
	span.SetStatus(codes.Ok, "")
	return nil
}

// JoinQueue issues a ticket for a service, replacing any live ticket
func (s *sessionService) JoinQueue(ctx context.Context, sessionID string, req *dto.JoinQueueRequest) (*dto.TicketResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.join_queue")
	defer span.End()

	if req == nil || req.ServiceID == "" {
		span.SetStatus(codes.Error, "invalid service_id")
		return nil, domain.ErrInvalidServiceReference
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("service_id", req.ServiceID),
	)

	svc, err := s.catalog.Lookup(req.ServiceID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, domain.ErrSessionNotFound.Error())
		return nil, domain.ErrSessionNotFound
	}

	replaced := sess.clearTicketLocked()
	number := random.Between(s.rand, domain.MinTicketNumber, domain.MaxTicketNumber)
	ticket := domain.NewTicket(svc, number, s.clock.Now())
	sess.ticket = &ticket
	s.scheduleTickLocked(sess)
	sess.notifications.Push(domain.MessageJoined)
	snap := s.changedLocked(sess)
	sess.mu.Unlock()

	if replaced != nil {
		s.ticketCleared(ctx, sess.id, replaced, reasonReplaced)
	}
	metrics.RecordQueueJoin(svc.ID)
	s.publish(ctx, domain.EventQueueJoined, sess.id, &ticket, snap.Ticket)
	sess.broadcast(snap)

	span.SetAttributes(
		attribute.String("ticket_id", ticket.ID),
		attribute.Int("number", ticket.Number),
		attribute.Int("position", ticket.Position),
	)
	span.SetStatus(codes.Ok, "")
	return snap.Ticket, nil
}

// LeaveQueue removes the live ticket
func (s *sessionService) LeaveQueue(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error) {
	return s.removeTicket(ctx, sessionID, reasonLeft)
}

// DismissTicket clears the ticket once the visit is done
func (s *sessionService) DismissTicket(ctx context.Context, sessionID string) (*dto.LeaveQueueResponse, error) {
	return s.removeTicket(ctx, sessionID, reasonDismissed)
}

func (s *sessionService) removeTicket(ctx context.Context, sessionID, reason string) (*dto.LeaveQueueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session."+reason)
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, domain.ErrSessionNotFound.Error())
		return nil, domain.ErrSessionNotFound
	}
	if sess.ticket == nil {
		sess.lastActivity = s.clock.Now()
		sess.mu.Unlock()
		span.SetStatus(codes.Ok, "no active ticket")
		return &dto.LeaveQueueResponse{Success: false, Message: "No active ticket."}, nil
	}

	old := sess.clearTicketLocked()
	message := "Ticket dismissed."
	if reason == reasonLeft {
		message = domain.MessageLeft
		sess.notifications.Push(domain.MessageLeft)
	}
	snap := s.changedLocked(sess)
	sess.mu.Unlock()

	s.ticketCleared(ctx, sess.id, old, reason)
	sess.broadcast(snap)

	span.SetAttributes(attribute.String("ticket_id", old.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.LeaveQueueResponse{Success: true, Message: message}, nil
}

// GetTicket returns the live ticket
func (s *sessionService) GetTicket(ctx context.Context, sessionID string) (*dto.TicketResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.session.get_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ended {
		return nil, domain.ErrSessionNotFound
	}
	sess.lastActivity = s.clock.Now()
	if sess.ticket == nil {
		span.SetStatus(codes.Error, domain.ErrNoActiveTicket.Error())
		return nil, domain.ErrNoActiveTicket
	}

	span.SetStatus(codes.Ok, "")
	return toTicketResponse(sess.ticket), nil
}

// ListNotifications returns the notifications newest first
func (s *sessionService) ListNotifications(ctx context.Context, sessionID string) ([]dto.NotificationResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.session.list_notifications")
	defer span.End()

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ended {
		return nil, domain.ErrSessionNotFound
	}
	sess.lastActivity = s.clock.Now()

	return toNotificationResponses(sess.notifications.List()), nil
}

// SubmitFeedback records feedback about the live ticket
func (s *sessionService) SubmitFeedback(ctx context.Context, sessionID string, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.submit_feedback")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", sessionID))

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	fb := domain.Feedback{SessionID: sessionID}
	if req != nil {
		fb.Rating = req.Rating
		fb.Comment = req.Comment
	}
	if err := fb.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if sess.ticket == nil {
		sess.mu.Unlock()
		span.SetStatus(codes.Error, domain.ErrNoActiveTicket.Error())
		return nil, domain.ErrNoActiveTicket
	}
	ticket := *sess.ticket
	fb.TicketID = ticket.ID
	fb.ServiceID = ticket.ServiceID
	fb.CreatedAt = s.clock.Now()
	sess.feedback = append(sess.feedback, fb)
	sess.lastActivity = fb.CreatedAt
	sess.mu.Unlock()

	s.publish(ctx, domain.EventFeedbackSubmitted, sessionID, &ticket, fb)

	span.SetAttributes(attribute.Int("rating", fb.Rating))
	span.SetStatus(codes.Ok, "")
	return &dto.FeedbackResponse{
		TicketID:  fb.TicketID,
		ServiceID: fb.ServiceID,
		Rating:    fb.Rating,
		Comment:   fb.Comment,
		CreatedAt: fb.CreatedAt,
	}, nil
}

// SelectAdminService changes the service shown in the admin view
func (s *sessionService) SelectAdminService(ctx context.Context, sessionID string, req *dto.SelectServiceRequest) (*dto.SessionResponse, error) {
	_, span := telemetry.StartSpan(ctx, "service.session.select_admin_service")
	defer span.End()

	if req == nil || req.ServiceID == "" {
		span.SetStatus(codes.Error, "invalid service_id")
		return nil, domain.ErrInvalidServiceReference
	}

	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.String("service_id", req.ServiceID),
	)

	if _, err := s.catalog.Lookup(req.ServiceID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	sess.adminServiceID = req.ServiceID
	snap := s.changedLocked(sess)
	sess.mu.Unlock()

	sess.broadcast(snap)
	span.SetStatus(codes.Ok, "")
	return snap, nil
}

// Subscribe streams snapshots after every change
func (s *sessionService) Subscribe(ctx context.Context, sessionID string) (<-chan *dto.SessionResponse, func(), error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.ended {
		return nil, nil, domain.ErrSessionNotFound
	}

	ch, cancel, ok := sess.addSubscriber(sess.snapshotLocked(), s.subscriberBuffer)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	return ch, cancel, nil
}

// ReapIdle ends sessions idle for longer than ttl that have no open stream
func (s *sessionService) ReapIdle(ctx context.Context, ttl time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	var idle []*session
	for id, sess := range s.sessions {
		if sess.idleFor(now) > ttl && !sess.hasSubscribers() {
			delete(s.sessions, id)
			idle = append(idle, sess)
		}
	}
	s.mu.Unlock()

	for _, sess := range idle {
		s.endSession(ctx, sess, reasonReaped)
	}
	return len(idle)
}

// ActiveSessions returns the number of open sessions
func (s *sessionService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown ends every session
func (s *sessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.endSession(ctx, sess, reasonShutdown)
	}
}

func (s *sessionService) lookup(sessionID string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// changedLocked records a user-driven change and returns the new snapshot
func (s *sessionService) changedLocked(sess *session) *dto.SessionResponse {
	sess.version++
	sess.lastActivity = s.clock.Now()
	return sess.snapshotLocked()
}

func (s *sessionService) scheduleTickLocked(sess *session) {
	gen := sess.generation
	sess.tickTimer = s.clock.AfterFunc(s.tickInterval, func() {
		s.tick(sess, gen)
	})
}

// tick advances the live ticket one step. Callbacks from a cancelled or
// replaced ticket see a stale generation and do nothing.
func (s *sessionService) tick(sess *session, gen uint64) {
	sess.mu.Lock()
	if sess.ended || sess.generation != gen || sess.ticket == nil {
		sess.mu.Unlock()
		return
	}

	next, crossings := sess.ticket.Advance(random.Between(s.rand, 1, 2))
	sess.ticket = &next
	for _, c := range crossings {
		sess.notifications.Push(c.Message())
	}
	if next.Position > 0 || next.ETAMinutes > 0 {
		s.scheduleTickLocked(sess)
	} else {
		sess.tickTimer = nil
	}
	sess.version++
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	names := make([]string, len(crossings))
	for i, c := range crossings {
		names[i] = string(c)
	}
	metrics.RecordTick(next.ServiceID, names...)
	s.log.Debug("ticket advanced",
		zap.String("session_id", sess.id),
		zap.String("ticket_id", next.ID),
		zap.Int("position", next.Position),
		zap.Int("eta_minutes", next.ETAMinutes),
		zap.Strings("crossings", names),
	)

	ctx := context.Background()
	s.publish(ctx, domain.EventQueuePositionUpdated, sess.id, &next, snap.Ticket)
	for _, c := range crossings {
		s.publish(ctx, domain.EventTypeForCrossing(c), sess.id, &next, map[string]any{"message": c.Message()})
	}
	sess.broadcast(snap)
}

func (s *sessionService) notificationExpired(sess *session) {
	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		return
	}
	sess.version++
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	sess.broadcast(snap)
}

// endSession runs the teardown once. The session must already be out of the map.
func (s *sessionService) endSession(ctx context.Context, sess *session, reason string) {
	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		return
	}
	sess.ended = true
	old := sess.clearTicketLocked()
	sess.mu.Unlock()

	sess.notifications.Close()
	sess.closeSubscribers()
	metrics.ActiveSessions.Dec()

	if old != nil {
		s.ticketCleared(ctx, sess.id, old, reason)
	}
	s.publish(ctx, domain.EventSessionEnded, sess.id, nil, map[string]any{"reason": reason})

	s.log.Info("session ended",
		zap.String("session_id", sess.id),
		zap.String("reason", reason),
	)
}

func (s *sessionService) ticketCleared(ctx context.Context, sessionID string, ticket *domain.Ticket, reason string) {
	metrics.RecordQueueLeave(ticket.ServiceID, reason, s.clock.Now().Sub(ticket.CreatedAt))

	eventType := domain.EventQueueLeft
	if reason == reasonDismissed {
		eventType = domain.EventQueueDismissed
	}
	s.publish(ctx, eventType, sessionID, ticket, map[string]any{
		"reason":   reason,
		"position": ticket.Position,
		"number":   ticket.Number,
	})
}

// publish never fails the caller. Errors are logged and counted.
func (s *sessionService) publish(ctx context.Context, eventType domain.QueueEventType, sessionID string, ticket *domain.Ticket, payload any) {
	event := domain.NewQueueEvent(eventType, uuid.New().String(), sessionID, ticket, payload, s.clock.Now())

	err := s.publisher.Publish(context.WithoutCancel(ctx), event)
	metrics.RecordEventPublished(string(eventType), err)
	if err != nil {
		s.log.Warn("failed to publish queue event",
			zap.String("event_type", string(eventType)),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
