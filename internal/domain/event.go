package domain

import "time"

// QueueEventType names a published lifecycle event
type QueueEventType string

const (
	EventQueueJoined          QueueEventType = "queue.joined"
	EventQueueLeft            QueueEventType = "queue.left"
	EventQueueDismissed       QueueEventType = "queue.dismissed"
	EventQueuePositionUpdated QueueEventType = "queue.position_updated"
	EventQueueTurnApproaching QueueEventType = "queue.turn_approaching"
	EventQueueTurnReached     QueueEventType = "queue.turn_reached"
	EventAdminCalledNext      QueueEventType = "admin.called_next"
	EventAdminSkipped         QueueEventType = "admin.skipped"
	EventSessionStarted       QueueEventType = "session.started"
	EventSessionEnded         QueueEventType = "session.ended"
	EventFeedbackSubmitted    QueueEventType = "feedback.submitted"
)

// EventTypeForCrossing maps a threshold crossing to its event type
func EventTypeForCrossing(c Crossing) QueueEventType {
	if c == CrossingTurnReached {
		return EventQueueTurnReached
	}
	return EventQueueTurnApproaching
}

// QueueEvent is the envelope published to the event stream
type QueueEvent struct {
	EventID   string         `json:"event_id"`
	EventType QueueEventType `json:"event_type"`
	SessionID string         `json:"session_id,omitempty"`
	ServiceID string         `json:"service_id,omitempty"`
	TicketID  string         `json:"ticket_id,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewQueueEvent builds an event for a session-scoped change
func NewQueueEvent(eventType QueueEventType, eventID, sessionID string, ticket *Ticket, payload any, now time.Time) *QueueEvent {
	ev := &QueueEvent{
		EventID:   eventID,
		EventType: eventType,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: now,
	}
	if ticket != nil {
		ev.ServiceID = ticket.ServiceID
		ev.TicketID = ticket.ID
	}
	return ev
}

// Key returns the partition key. Events of one session stay ordered.
func (e *QueueEvent) Key() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return e.ServiceID
}
