package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T, id string) Service {
	t.Helper()
	for _, s := range DefaultCatalog() {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("service %s not in catalog", id)
	return Service{}
}

func TestNewTicket(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	ticket := NewTicket(testService(t, "sal-1"), 345, now)

	assert.Equal(t, "sal-1-1700000000123", ticket.ID)
	assert.Equal(t, "sal-1", ticket.ServiceID)
	assert.Equal(t, "Salon", ticket.ServiceType)
	assert.Equal(t, "BlueWave Salon", ticket.ServiceName)
	assert.Equal(t, "Market St.", ticket.Location)
	assert.Equal(t, 345, ticket.Number)
	assert.Equal(t, 5, ticket.Position)
	assert.Equal(t, 18, ticket.ETAMinutes)
	assert.Equal(t, 5, ticket.InitialPosition)
	assert.Equal(t, now, ticket.CreatedAt)
}

func TestAdvance_DoesNotMutateReceiver(t *testing.T) {
	ticket := Ticket{Position: 4, ETAMinutes: 10}
	next, _ := ticket.Advance(2)

	assert.Equal(t, 4, ticket.Position)
	assert.Equal(t, 10, ticket.ETAMinutes)
	assert.Equal(t, 3, next.Position)
	assert.Equal(t, 8, next.ETAMinutes)
}

func TestAdvance_FloorsAtZero(t *testing.T) {
	ticket := Ticket{Position: 0, ETAMinutes: 1}
	next, crossings := ticket.Advance(2)

	assert.Equal(t, 0, next.Position)
	assert.Equal(t, 0, next.ETAMinutes)
	assert.Empty(t, crossings)
}

func TestAdvance_ComingSoonIsEdgeTriggered(t *testing.T) {
	ticket := Ticket{Position: 5, ETAMinutes: 30}
	var seen []Crossing
	for i := 0; i < 10; i++ {
		var crossings []Crossing
		ticket, crossings = ticket.Advance(1)
		seen = append(seen, crossings...)
	}

	assert.Equal(t, []Crossing{CrossingTurnApproaching, CrossingTurnReached}, seen)
}

func TestAdvance_StartingNearTurn(t *testing.T) {
	// Joining at position 2 never crosses the coming-soon threshold.
	ticket := Ticket{Position: 2, ETAMinutes: 5}

	next, crossings := ticket.Advance(1)
	assert.Empty(t, crossings)
	assert.Equal(t, 1, next.Position)

	next, crossings = next.Advance(1)
	assert.Equal(t, []Crossing{CrossingTurnReached}, crossings)
	assert.True(t, next.IsTurn())
}

func TestAdvance_BothCrossingsInOneStep(t *testing.T) {
	// A single decrement from 3 to 2 cannot reach zero, so only one crossing fires.
	_, crossings := Ticket{Position: 3}.Advance(1)
	assert.Equal(t, []Crossing{CrossingTurnApproaching}, crossings)

	_, crossings = Ticket{Position: 1}.Advance(1)
	assert.Equal(t, []Crossing{CrossingTurnReached}, crossings)
}

func TestAdvance_DMVRunsToZero(t *testing.T) {
	ticket := NewTicket(testService(t, "dmv-1"), 100, time.Now())
	turns := 0
	for i := 0; i < 20; i++ {
		prev := ticket
		var crossings []Crossing
		ticket, crossings = ticket.Advance(1 + i%2)
		require.LessOrEqual(t, ticket.Position, prev.Position)
		require.LessOrEqual(t, ticket.ETAMinutes, prev.ETAMinutes)
		for _, c := range crossings {
			if c == CrossingTurnReached {
				turns++
			}
		}
	}

	assert.Equal(t, 0, ticket.Position)
	assert.Equal(t, 1, turns)
	assert.GreaterOrEqual(t, ticket.ETAMinutes, 12)
	assert.LessOrEqual(t, ticket.ETAMinutes, 32)
}

func TestCrossingMessage(t *testing.T) {
	assert.Equal(t, MessageComingSoon, CrossingTurnApproaching.Message())
	assert.Equal(t, MessageYourTurn, CrossingTurnReached.Message())
	assert.Equal(t, "", Crossing("other").Message())
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		initial  int
		position int
		want     int
	}{
		{"fresh ticket", 12, 12, 0},
		{"halfway", 9, 4, 50},
		{"turn reached", 12, 0, 92},
		{"zero baseline", 0, 0, 50},
		{"position above initial clamps", 3, 8, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := Ticket{InitialPosition: tt.initial, Position: tt.position}
			assert.Equal(t, tt.want, ticket.Progress())
		})
	}
}
