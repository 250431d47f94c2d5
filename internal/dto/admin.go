package dto

// AdminQueueResponse represents one service's serving counters
type AdminQueueResponse struct {
	ServiceID           string `json:"service_id"`
	ServiceName         string `json:"service_name"`
	CurrentServedNumber int    `json:"current_served_number"`
	WaitingCount        int    `json:"waiting_count"`
	AverageWaitMinutes  int    `json:"average_wait_minutes"`
}
