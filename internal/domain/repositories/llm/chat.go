package llm

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/llm"
)

// ChatRepository defines the interface for chat history data access.
// All methods are scoped to the caller.
type ChatRepository interface {
	// Create appends a message to the caller's history
	Create(ctx context.Context, caller *models.Caller, msg *llm.ChatMessage) error

	// ListRecent returns the newest `limit` messages in chronological order
	// Returns empty slice if there is no history
	ListRecent(ctx context.Context, caller *models.Caller, limit int) ([]llm.ChatMessage, error)

	// DeleteAll clears the caller's history and returns the number of removed messages
	DeleteAll(ctx context.Context, caller *models.Caller) (int64, error)
}
