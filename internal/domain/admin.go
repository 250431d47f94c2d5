package domain

// InitialServedNumber is the serial every admin queue starts from
const InitialServedNumber = 100

// AdminQueueState holds the serving progress of one service
type AdminQueueState struct {
	ServiceID           string `json:"service_id"`
	CurrentServedNumber int    `json:"current_served_number"`
	WaitingCount        int    `json:"waiting_count"`
	AverageWaitMinutes  int    `json:"average_wait_minutes"`
}

// NewAdminQueueState seeds counters from the service baseline
func NewAdminQueueState(svc Service) AdminQueueState {
	return AdminQueueState{
		ServiceID:           svc.ID,
		CurrentServedNumber: InitialServedNumber,
		WaitingCount:        max(0, svc.Position),
		AverageWaitMinutes:  max(0, svc.WaitMinutes),
	}
}

// CallNext serves the next number and removes one waiter
func (s AdminQueueState) CallNext() AdminQueueState {
	s.CurrentServedNumber++
	s.WaitingCount = max(0, s.WaitingCount-1)
	return s
}

// Skip advances the serial without removing a waiter
func (s AdminQueueState) Skip() AdminQueueState {
	s.CurrentServedNumber++
	return s
}
