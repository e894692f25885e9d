package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"docassist/internal/config"
	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
	"docassist/internal/domain/services"
)

type notificationService struct {
	repo   repositories.NotificationRepository
	logger *slog.Logger
}

// NewNotificationService creates the read-side notification service
func NewNotificationService(repo repositories.NotificationRepository, logger *slog.Logger) services.NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

// ListNotifications returns the newest notifications; limit is clamped to the configured range
func (s *notificationService) ListNotifications(ctx context.Context, caller *models.Caller, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = config.DefaultNotificationLimit
	}
	if limit > config.MaxNotificationLimit {
		limit = config.MaxNotificationLimit
	}

	notifications, err := s.repo.List(ctx, caller, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, caller *models.Caller) (int, error) {
	return s.repo.CountUnread(ctx, caller)
}

func (s *notificationService) MarkRead(ctx context.Context, caller *models.Caller, id string) (*models.Notification, error) {
	return s.repo.SetRead(ctx, caller, id, true)
}

func (s *notificationService) MarkUnread(ctx context.Context, caller *models.Caller, id string) (*models.Notification, error) {
	return s.repo.SetRead(ctx, caller, id, false)
}

// MarkAllRead marks every unread notification read
func (s *notificationService) MarkAllRead(ctx context.Context, caller *models.Caller) (int64, error) {
	changed, err := s.repo.MarkAllRead(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	s.logger.Debug("notifications marked read", "user_id", caller.UserID, "count", changed)
	return changed, nil
}
