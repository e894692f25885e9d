package tasks

import (
	"context"
	"log/slog"

	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
	"docassist/internal/domain/services"
)

// Notifier stores a notification and then pushes it to live subscribers.
// Only the insert can fail the call; a publish error is logged.
type Notifier struct {
	repo      repositories.NotificationRepository
	publisher services.NotificationPublisher
	logger    *slog.Logger
}

// NewNotifier creates a notifier. publisher may be nil.
func NewNotifier(repo repositories.NotificationRepository, publisher services.NotificationPublisher, logger *slog.Logger) *Notifier {
	return &Notifier{repo: repo, publisher: publisher, logger: logger}
}

// Notify persists n for the caller and publishes it
func (n *Notifier) Notify(ctx context.Context, caller *models.Caller, notification *models.Notification) error {
	if notification.Data == nil {
		notification.Data = models.JSONMap{}
	}
	if err := n.repo.Create(ctx, caller, notification); err != nil {
		return err
	}

	if n.publisher != nil {
		if err := n.publisher.Publish(ctx, notification); err != nil {
			n.logger.Warn("failed to publish notification",
				"notification_id", notification.ID,
				"user_id", caller.UserID,
				"error", err,
			)
		}
	}
	return nil
}
