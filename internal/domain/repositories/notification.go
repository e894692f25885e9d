package repositories

import (
	"context"

	"docassist/internal/domain/models"
)

// NotificationRepository defines data access operations for notifications.
// Notifications are never deleted; only their read state changes.
type NotificationRepository interface {
	// Create inserts a notification
	Create(ctx context.Context, caller *models.Caller, n *models.Notification) error

	// List returns notifications, newest first
	List(ctx context.Context, caller *models.Caller, unreadOnly bool, limit int) ([]models.Notification, error)

	// CountUnread counts unread notifications
	CountUnread(ctx context.Context, caller *models.Caller) (int, error)

	// SetRead toggles read state and read_at of one notification
	SetRead(ctx context.Context, caller *models.Caller, id string, read bool) (*models.Notification, error)

	// MarkAllRead marks every unread notification read and returns how many changed
	MarkAllRead(ctx context.Context, caller *models.Caller) (int64, error)
}
