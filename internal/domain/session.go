package domain

import (
	"strings"
	"time"
)

// Profile validation bounds
const (
	MinNameLength     = 2
	MinPhoneLength    = 6
	MaxCommentLength  = 500
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// Profile identifies the person behind a session
type Profile struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// NewProfile trims and validates the sign-in fields
func NewProfile(name, phone string) (Profile, error) {
	p := Profile{Name: strings.TrimSpace(name), Phone: strings.TrimSpace(phone)}
	if len([]rune(p.Name)) < MinNameLength {
		return Profile{}, ErrInvalidName
	}
	if len([]rune(p.Phone)) < MinPhoneLength {
		return Profile{}, ErrInvalidPhone
	}
	return p, nil
}

// Feedback is a note left about a visit
type Feedback struct {
	SessionID string    `json:"session_id"`
	TicketID  string    `json:"ticket_id"`
	ServiceID string    `json:"service_id"`
	Rating    int       `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate validates the feedback. A zero rating means none was given.
func (f *Feedback) Validate() error {
	if f.Rating != 0 && (f.Rating < MinFeedbackRating || f.Rating > MaxFeedbackRating) {
		return ErrInvalidRating
	}
	if len([]rune(f.Comment)) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}
