package models

import "time"

// Notification types
const (
	NotificationDeadlineReminder = "deadline_reminder"
	NotificationDeadlineOverdue  = "deadline_overdue"
	NotificationTodosDetected    = "todos_detected"
)

// Notification is created by the deadline sweep or other triggers and only
// ever mutated by read-state toggles.
type Notification struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Type      string     `json:"type" db:"type"`
	Title     string     `json:"title" db:"title"`
	Message   string     `json:"message" db:"message"`
	Data      JSONMap    `json:"data" db:"data"` // Opaque JSONB payload
	Read      bool       `json:"read" db:"read"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	ReadAt    *time.Time `json:"read_at" db:"read_at"`
}
