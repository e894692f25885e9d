package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
)

const todoColumns = `id, user_id, title, description, status, priority, due_date,
	deadline_notification_sent, source, source_id, source_type, completed_at, created_at, updated_at`

// PostgresTodoRepository implements the TodoRepository interface
type PostgresTodoRepository struct {
	pool   repositories.DBTX
	tables *TableNames
	logger *slog.Logger
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(config *RepositoryConfig) repositories.TodoRepository {
	return &PostgresTodoRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new todo
func (r *PostgresTodoRepository) Create(ctx context.Context, caller *models.Caller, todo *models.Todo) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, title, description, status, priority, due_date,
			deadline_notification_sent, source, source_id, source_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8, $9, $10, $11)
		RETURNING id, user_id, deadline_notification_sent, created_at, updated_at
	`, r.tables.Todos)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		todo.Title,
		todo.Description,
		todo.Status,
		todo.Priority,
		todo.DueDate,
		todo.Source,
		todo.SourceID,
		todo.SourceType,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID, &todo.UserID, &todo.DeadlineNotificationSent, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create todo: %w", err)
	}

	return nil
}

// GetByID retrieves a todo by ID
func (r *PostgresTodoRepository) GetByID(ctx context.Context, caller *models.Caller, id string) (*models.Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, todoColumns, r.tables.Todos)

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id, caller.UserID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}

	return todo, nil
}

// Update writes mutable fields; deadline_notification_sent is left as is
func (r *PostgresTodoRepository) Update(ctx context.Context, caller *models.Caller, todo *models.Todo) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
			completed_at = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9
	`, r.tables.Todos)

	result, err := r.pool.Exec(ctx, query,
		todo.Title,
		todo.Description,
		todo.Status,
		todo.Priority,
		todo.DueDate,
		todo.CompletedAt,
		todo.UpdatedAt,
		todo.ID,
		caller.UserID,
	)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", todo.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a todo
func (r *PostgresTodoRepository) Delete(ctx context.Context, caller *models.Caller, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Todos)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists todos, earliest due date first
func (r *PostgresTodoRepository) List(ctx context.Context, caller *models.Caller, filter *models.TodoFilter) ([]models.Todo, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{caller.UserID}

	if filter != nil {
		if filter.Status != nil {
			args = append(args, *filter.Status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if filter.Priority != nil {
			args = append(args, *filter.Priority)
			conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
		}
		if filter.SourceID != nil {
			args = append(args, *filter.SourceID)
			conditions = append(conditions, fmt.Sprintf("source_id = $%d", len(args)))
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY due_date ASC NULLS LAST, created_at DESC
	`, todoColumns, r.tables.Todos, strings.Join(conditions, " AND "))

	return r.queryTodos(ctx, query, args...)
}

// ListDeadlineCandidates returns open todos with a due date and no reminder sent yet
func (r *PostgresTodoRepository) ListDeadlineCandidates(ctx context.Context, caller *models.Caller) ([]models.Todo, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		  AND status IN ($2, $3)
		  AND due_date IS NOT NULL
		  AND deadline_notification_sent = false
		ORDER BY due_date ASC
	`, todoColumns, r.tables.Todos)

	return r.queryTodos(ctx, query, caller.UserID, models.TodoPending, models.TodoInProgress)
}

// ListDeadlineOwners returns user ids with at least one deadline candidate
func (r *PostgresTodoRepository) ListDeadlineOwners(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT user_id
		FROM %s
		WHERE status IN ($1, $2)
		  AND due_date IS NOT NULL
		  AND deadline_notification_sent = false
	`, r.tables.Todos)

	rows, err := r.pool.Query(ctx, query, models.TodoPending, models.TodoInProgress)
	if err != nil {
		return nil, fmt.Errorf("list deadline owners: %w", err)
	}
	defer rows.Close()

	owners := make([]string, 0)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan deadline owner: %w", err)
		}
		owners = append(owners, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deadline owners: %w", err)
	}

	return owners, nil
}

// ClaimDeadlineNotification sets the flag only if it is still false, so one sweep wins
func (r *PostgresTodoRepository) ClaimDeadlineNotification(ctx context.Context, caller *models.Caller, id string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deadline_notification_sent = true, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND deadline_notification_sent = false
	`, r.tables.Todos)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return false, fmt.Errorf("claim todo deadline: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// ReleaseDeadlineNotification clears the flag after a failed notification insert
func (r *PostgresTodoRepository) ReleaseDeadlineNotification(ctx context.Context, caller *models.Caller, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deadline_notification_sent = false, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`, r.tables.Todos)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("release todo deadline: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *PostgresTodoRepository) queryTodos(ctx context.Context, query string, args ...interface{}) ([]models.Todo, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}

func scanTodo(row Scanner) (*models.Todo, error) {
	var todo models.Todo
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Status,
		&todo.Priority,
		&todo.DueDate,
		&todo.DeadlineNotificationSent,
		&todo.Source,
		&todo.SourceID,
		&todo.SourceType,
		&todo.CompletedAt,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}
