package repositories

import (
	"context"

	"docassist/internal/domain/models"
)

// TodoRepository defines data access operations for todos
type TodoRepository interface {
	// Create creates a new todo
	Create(ctx context.Context, caller *models.Caller, todo *models.Todo) error

	// GetByID retrieves a todo by ID
	GetByID(ctx context.Context, caller *models.Caller, id string) (*models.Todo, error)

	// Update writes every mutable field. It never touches deadline_notification_sent.
	Update(ctx context.Context, caller *models.Caller, todo *models.Todo) error

	// Delete deletes a todo
	Delete(ctx context.Context, caller *models.Caller, id string) error

	// List lists todos, earliest due date first (no due date last)
	List(ctx context.Context, caller *models.Caller, filter *models.TodoFilter) ([]models.Todo, error)

	// ListDeadlineCandidates returns open todos with a due date whose reminder has not been sent
	ListDeadlineCandidates(ctx context.Context, caller *models.Caller) ([]models.Todo, error)

	// ListDeadlineOwners returns the user ids that have at least one deadline candidate
	ListDeadlineOwners(ctx context.Context) ([]string, error)

	// ClaimDeadlineNotification flips deadline_notification_sent from false to true.
	// It reports false when another sweep already holds the claim.
	ClaimDeadlineNotification(ctx context.Context, caller *models.Caller, id string) (bool, error)

	// ReleaseDeadlineNotification resets deadline_notification_sent so the todo is eligible again
	ReleaseDeadlineNotification(ctx context.Context, caller *models.Caller, id string) error
}
