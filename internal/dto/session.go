package dto

import "time"

// SignInRequest represents request to start a session
type SignInRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// JoinQueueRequest represents request to join a service queue
type JoinQueueRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// SelectServiceRequest represents request to change the admin selection
type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// FeedbackRequest represents feedback about a visit. Rating 0 means none.
type FeedbackRequest struct {
	Rating  int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// TicketResponse represents the live ticket
type TicketResponse struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"service_id"`
	ServiceType string    `json:"service_type"`
	ServiceName string    `json:"service_name"`
	Location    string    `json:"location"`
	Number      int       `json:"number"`
	Position    int       `json:"position"`
	ETAMinutes  int       `json:"eta_minutes"`
	Progress    int       `json:"progress"`
	IsTurn      bool      `json:"is_turn"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationResponse represents a transient message
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionResponse represents the full state of a session
type SessionResponse struct {
	SessionID      string                 `json:"session_id"`
	Version        uint64                 `json:"version"`
	Name           string                 `json:"name"`
	Phone          string                 `json:"phone"`
	Ticket         *TicketResponse        `json:"ticket"`
	Notifications  []NotificationResponse `json:"notifications"`
	AdminServiceID string                 `json:"admin_service_id"`
	CreatedAt      time.Time              `json:"created_at"`
	LastActivityAt time.Time              `json:"last_activity_at"`
}

// LeaveQueueResponse represents response after clearing a ticket
type LeaveQueueResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FeedbackResponse represents recorded feedback
type FeedbackResponse struct {
	TicketID  string    `json:"ticket_id"`
	ServiceID string    `json:"service_id"`
	Rating    int       `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
