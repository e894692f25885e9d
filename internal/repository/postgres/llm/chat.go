package llm

import (
	"context"
	"fmt"
	"log/slog"

	"docassist/internal/domain/models"
	llmModels "docassist/internal/domain/models/llm"
	"docassist/internal/domain/repositories"
	llmRepo "docassist/internal/domain/repositories/llm"
	"docassist/internal/repository/postgres"
)

// PostgresChatRepository implements the ChatRepository interface using PostgreSQL
type PostgresChatRepository struct {
	pool   repositories.DBTX
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewChatRepository creates a new PostgresChatRepository
func NewChatRepository(config *postgres.RepositoryConfig) llmRepo.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a message to the caller's history
func (r *PostgresChatRepository) Create(ctx context.Context, caller *models.Caller, msg *llmModels.ChatMessage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, created_at
	`, r.tables.ChatMessages)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		msg.Role,
		msg.Content,
		msg.Metadata,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.UserID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}

	return nil
}

// ListRecent returns the newest `limit` messages, oldest first
func (r *PostgresChatRepository) ListRecent(ctx context.Context, caller *models.Caller, limit int) ([]llmModels.ChatMessage, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, role, content, metadata, created_at
		FROM (
			SELECT id, user_id, role, content, metadata, created_at
			FROM %s
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, r.tables.ChatMessages)

	rows, err := r.pool.Query(ctx, query, caller.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]llmModels.ChatMessage, 0)
	for rows.Next() {
		var msg llmModels.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Role, &msg.Content, &msg.Metadata, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return messages, nil
}

// DeleteAll clears the caller's history
func (r *PostgresChatRepository) DeleteAll(ctx context.Context, caller *models.Caller) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.tables.ChatMessages)

	result, err := r.pool.Exec(ctx, query, caller.UserID)
	if err != nil {
		return 0, fmt.Errorf("clear chat history: %w", err)
	}

	r.logger.Debug("chat history cleared", "user_id", caller.UserID, "deleted", result.RowsAffected())
	return result.RowsAffected(), nil
}
