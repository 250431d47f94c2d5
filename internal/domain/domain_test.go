package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	ids := make([]string, 0, len(catalog))
	for _, s := range catalog {
		assert.NoError(t, s.Validate())
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"hsp-1", "sal-1", "bnk-1", "dmv-1"}, ids)
}

func TestService_Validate(t *testing.T) {
	s := Service{ID: " "}
	assert.ErrorIs(t, s.Validate(), ErrInvalidServiceReference)

	s = Service{ID: "x", Position: -1}
	assert.ErrorIs(t, s.Validate(), ErrInvalidBaseline)
}

func TestService_Matches(t *testing.T) {
	s := Service{ID: "bnk-1", Type: "Bank", Name: "SecureBank"}

	assert.True(t, s.Matches("", ""))
	assert.True(t, s.Matches("secure", ServiceTypeAll))
	assert.True(t, s.Matches("BANK", ""))
	assert.True(t, s.Matches("  bank ", "Bank"))
	assert.False(t, s.Matches("salon", ""))
	assert.False(t, s.Matches("", "bank"))
	assert.False(t, s.Matches("secure", "Hospital"))
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("  Ann ", " 555123 ")
	assert.NoError(t, err)
	assert.Equal(t, Profile{Name: "Ann", Phone: "555123"}, p)

	_, err = NewProfile(" A ", "555123")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = NewProfile("Ann", "  12345  ")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestFeedback_Validate(t *testing.T) {
	tests := []struct {
		name string
		fb   Feedback
		want error
	}{
		{"empty is fine", Feedback{}, nil},
		{"rating in range", Feedback{Rating: 5, Comment: "quick"}, nil},
		{"rating too high", Feedback{Rating: 6}, ErrInvalidRating},
		{"negative rating", Feedback{Rating: -1}, ErrInvalidRating},
		{"comment too long", Feedback{Comment: strings.Repeat("a", MaxCommentLength+1)}, ErrCommentTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fb.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAdminQueueState(t *testing.T) {
	state := NewAdminQueueState(Service{ID: "bnk-1", Position: 12, WaitMinutes: 25})
	assert.Equal(t, AdminQueueState{ServiceID: "bnk-1", CurrentServedNumber: 100, WaitingCount: 12, AverageWaitMinutes: 25}, state)

	state = state.Skip()
	assert.Equal(t, 101, state.CurrentServedNumber)
	assert.Equal(t, 12, state.WaitingCount)

	state = state.CallNext()
	assert.Equal(t, 102, state.CurrentServedNumber)
	assert.Equal(t, 11, state.WaitingCount)
	assert.Equal(t, 25, state.AverageWaitMinutes)

	empty := AdminQueueState{CurrentServedNumber: 100}.CallNext()
	assert.Equal(t, 0, empty.WaitingCount)
	assert.Equal(t, 101, empty.CurrentServedNumber)
}

func TestErrorClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("join: %w", ErrInvalidServiceReference)
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsValidationError(wrapped))

	assert.True(t, IsNotFoundError(ErrSessionNotFound))
	assert.True(t, IsNotFoundError(ErrNoActiveTicket))
	assert.True(t, IsValidationError(ErrInvalidPhone))
	assert.True(t, IsValidationError(ErrCommentTooLong))
}

func TestQueueEvent_Key(t *testing.T) {
	ticket := &Ticket{ID: "sal-1-1", ServiceID: "sal-1"}
	ev := NewQueueEvent(EventQueueJoined, "e1", "sess-1", ticket, nil, ticket.CreatedAt)
	assert.Equal(t, "sess-1", ev.Key())
	assert.Equal(t, "sal-1", ev.ServiceID)
	assert.Equal(t, "sal-1-1", ev.TicketID)

	admin := &QueueEvent{EventType: EventAdminSkipped, ServiceID: "sal-1"}
	assert.Equal(t, "sal-1", admin.Key())

	assert.Equal(t, EventQueueTurnReached, EventTypeForCrossing(CrossingTurnReached))
	assert.Equal(t, EventQueueTurnApproaching, EventTypeForCrossing(CrossingTurnApproaching))
}
