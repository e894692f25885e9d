package services

import (
	"context"
	"time"

	"docassist/internal/domain/models"
)

// NotificationService handles notification reads and read-state toggles
type NotificationService interface {
	ListNotifications(ctx context.Context, caller *models.Caller, unreadOnly bool, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, caller *models.Caller) (int, error)
	MarkRead(ctx context.Context, caller *models.Caller, id string) (*models.Notification, error)
	MarkUnread(ctx context.Context, caller *models.Caller, id string) (*models.Notification, error)
	MarkAllRead(ctx context.Context, caller *models.Caller) (int64, error)
}

// NotificationPublisher fans out freshly created notifications to live subscribers.
// Publishing is best effort; the stored row is the source of truth.
type NotificationPublisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// NotificationSubscriber delivers a caller's live notifications until ctx is done
type NotificationSubscriber interface {
	Subscribe(ctx context.Context, caller *models.Caller) (<-chan models.Notification, error)
}

// DeadlineSweeper creates deadline notifications for due todos
type DeadlineSweeper interface {
	// Sweep processes the caller's todos
	Sweep(ctx context.Context, caller *models.Caller, now time.Time) (*SweepResult, error)

	// SweepAll processes every owner that has pending deadlines
	SweepAll(ctx context.Context, now time.Time) (*SweepResult, error)
}

// SweepResult summarises one sweep. Failed todos are logged and skipped.
type SweepResult struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// Add accumulates another result into r
func (r *SweepResult) Add(other *SweepResult) {
	r.Checked += other.Checked
	r.Notified += other.Notified
	r.Failed += other.Failed
}
