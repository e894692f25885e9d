package models

import (
	"time"
)

// TodoStatus is the lifecycle state of a todo
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
	TodoCancelled  TodoStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s TodoStatus) Valid() bool {
	switch s {
	case TodoPending, TodoInProgress, TodoCompleted, TodoCancelled:
		return true
	}
	return false
}

// Open reports whether the todo still needs doing (and may get deadline reminders)
func (s TodoStatus) Open() bool {
	return s == TodoPending || s == TodoInProgress
}

// TodoPriority is one of High, Medium, Low
type TodoPriority string

const (
	PriorityHigh   TodoPriority = "High"
	PriorityMedium TodoPriority = "Medium"
	PriorityLow    TodoPriority = "Low"
)

// Valid reports whether p is a known priority
func (p TodoPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Todo sources
const (
	TodoSourceManual    = "manual"
	TodoSourceAI        = "ai_detection"
	TodoSourceTypeText  = "text"
	TodoSourceTypeDoc   = "document"
	TodoSourceTypeNote  = "note"
	TodoSourceTypeAudio = "audio"
)

type Todo struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description" db:"description"`
	Status      TodoStatus   `json:"status" db:"status"`
	Priority    TodoPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date" db:"due_date"`
	// DeadlineNotificationSent goes false -> true once per approaching deadline.
	// Status changes never clear it.
	DeadlineNotificationSent bool       `json:"deadline_notification_sent" db:"deadline_notification_sent"`
	Source                   string     `json:"source" db:"source"`
	SourceID                 *string    `json:"source_id" db:"source_id"`
	SourceType               *string    `json:"source_type" db:"source_type"`
	CompletedAt              *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt                time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at" db:"updated_at"`
}

// TodoFilter narrows todo listings
type TodoFilter struct {
	Status   *TodoStatus
	Priority *TodoPriority
	SourceID *string
}
