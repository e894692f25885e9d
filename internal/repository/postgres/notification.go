package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
)

const notificationColumns = "id, user_id, type, title, message, data, read, created_at, read_at"

// PostgresNotificationRepository implements the NotificationRepository interface
type PostgresNotificationRepository struct {
	pool   repositories.DBTX
	tables *TableNames
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(config *RepositoryConfig) repositories.NotificationRepository {
	return &PostgresNotificationRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, caller *models.Caller, n *models.Notification) error {
	if n.Data == nil {
		n.Data = models.JSONMap{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, type, title, message, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		RETURNING id, user_id, read, created_at
	`, r.tables.Notifications)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		n.Type,
		n.Title,
		n.Message,
		n.Data,
		n.CreatedAt,
	).Scan(&n.ID, &n.UserID, &n.Read, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// List returns notifications, newest first
func (r *PostgresNotificationRepository) List(ctx context.Context, caller *models.Caller, unreadOnly bool, limit int) ([]models.Notification, error) {
	where := "user_id = $1"
	if unreadOnly {
		where += " AND read = false"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $2
	`, notificationColumns, r.tables.Notifications, where)

	rows, err := r.pool.Query(ctx, query, caller.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts unread notifications
func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, caller *models.Caller) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1 AND read = false`, r.tables.Notifications)

	var count int
	if err := r.pool.QueryRow(ctx, query, caller.UserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// SetRead toggles read state; read_at follows the flag
func (r *PostgresNotificationRepository) SetRead(ctx context.Context, caller *models.Caller, id string, read bool) (*models.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET read = $1, read_at = CASE WHEN $1 THEN now() ELSE NULL END
		WHERE id = $2 AND user_id = $3
		RETURNING %s
	`, r.tables.Notifications, notificationColumns)

	n, err := scanNotification(r.pool.QueryRow(ctx, query, read, id, caller.UserID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update notification: %w", err)
	}

	return n, nil
}

// MarkAllRead marks every unread notification read
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, caller *models.Caller) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET read = true, read_at = now()
		WHERE user_id = $1 AND read = false
	`, r.tables.Notifications)

	result, err := r.pool.Exec(ctx, query, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanNotification(row Scanner) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.Data,
		&n.Read,
		&n.CreatedAt,
		&n.ReadAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
