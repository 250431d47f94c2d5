package domain

import "time"

// Notification is a transient user-facing message
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification queue defaults
const (
	DefaultNotificationCap = 3
	DefaultNotificationTTL = 4 * time.Second
	DefaultTickInterval    = 4 * time.Second
)
