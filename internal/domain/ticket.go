package domain

import (
	"fmt"
	"math"
	"time"
)

// Ticket number range
const (
	MinTicketNumber = 100
	MaxTicketNumber = 999
)

// ComingSoonPosition is the position at or below which the turn is near
const ComingSoonPosition = 2

// Ticket is a session's claim on a position within one service's queue
type Ticket struct {
	ID              string    `json:"id"`
	ServiceID       string    `json:"service_id"`
	ServiceType     string    `json:"service_type"`
	ServiceName     string    `json:"service_name"`
	Location        string    `json:"location"`
	Number          int       `json:"number"`
	Position        int       `json:"position"`
	ETAMinutes      int       `json:"eta_minutes"`
	InitialPosition int       `json:"initial_position"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTicket issues a ticket at the service's baseline position and wait
func NewTicket(svc Service, number int, now time.Time) Ticket {
	return Ticket{
		ID:              fmt.Sprintf("%s-%d", svc.ID, now.UnixMilli()),
		ServiceID:       svc.ID,
		ServiceType:     svc.Type,
		ServiceName:     svc.Name,
		Location:        svc.Location,
		Number:          number,
		Position:        max(0, svc.Position),
		ETAMinutes:      max(0, svc.WaitMinutes),
		InitialPosition: max(0, svc.Position),
		CreatedAt:       now,
	}
}

// Crossing is a threshold passed during a tick
type Crossing string

const (
	CrossingTurnApproaching Crossing = "turn_approaching"
	CrossingTurnReached     Crossing = "turn_reached"
)

// Messages shown to the user
const (
	MessageJoined     = "You joined the queue successfully."
	MessageLeft       = "You left the queue."
	MessageComingSoon = "Heads up! Your turn is coming soon."
	MessageYourTurn   = "It's your turn now. Please proceed."
)

// Message returns the user-facing text for the crossing
func (c Crossing) Message() string {
	switch c {
	case CrossingTurnApproaching:
		return MessageComingSoon
	case CrossingTurnReached:
		return MessageYourTurn
	}
	return ""
}

// Advance returns the ticket one step later. The receiver is not modified.
// Position drops by one and ETA by etaDrop, both floored at zero.
// Crossings are edge-triggered on the transition from the old to the new position.
func (t Ticket) Advance(etaDrop int) (Ticket, []Crossing) {
	next := t
	next.Position = max(0, t.Position-1)
	next.ETAMinutes = max(0, t.ETAMinutes-max(0, etaDrop))

	var crossings []Crossing
	if t.Position > ComingSoonPosition && next.Position <= ComingSoonPosition {
		crossings = append(crossings, CrossingTurnApproaching)
	}
	if t.Position != 0 && next.Position == 0 {
		crossings = append(crossings, CrossingTurnReached)
	}
	return next, crossings
}

// IsTurn reports whether the ticket holder is being served
func (t Ticket) IsTurn() bool {
	return t.Position == 0
}

// Progress is the share of the wait completed, in percent
func (t Ticket) Progress() int {
	total := max(t.InitialPosition, 1) + 1
	done := total - (t.Position + 1)
	pct := int(math.Round(float64(done) / float64(total) * 100))
	return min(100, max(0, pct))
}
