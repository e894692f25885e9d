package services

import (
	"context"
	"time"

	"docassist/internal/domain/models"
	"docassist/internal/httputil"
)

// TodoService handles todo business logic
type TodoService interface {
	CreateTodo(ctx context.Context, caller *models.Caller, req *CreateTodoRequest) (*models.Todo, error)
	GetTodo(ctx context.Context, caller *models.Caller, id string) (*models.Todo, error)
	ListTodos(ctx context.Context, caller *models.Caller, filter *models.TodoFilter) ([]models.Todo, error)
	UpdateTodo(ctx context.Context, caller *models.Caller, id string, req *UpdateTodoRequest) (*models.Todo, error)
	DeleteTodo(ctx context.Context, caller *models.Caller, id string) error

	// DetectTodos extracts todos from text and persists the valid ones.
	// Creation is one row at a time; an insert failure stops the loop and
	// the rows already written stay.
	DetectTodos(ctx context.Context, caller *models.Caller, req *DetectTodosRequest) (*DetectTodosResult, error)
}

// CreateTodoRequest represents a manual todo creation request
type CreateTodoRequest struct {
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	Priority    models.TodoPriority `json:"priority,omitempty"` // default Medium
	DueDate     *time.Time          `json:"due_date,omitempty"`
}

// UpdateTodoRequest represents a todo update request
type UpdateTodoRequest struct {
	Title       *string                 `json:"title,omitempty"`
	Description httputil.OptionalString `json:"description,omitempty"`
	Status      *models.TodoStatus      `json:"status,omitempty"`
	Priority    *models.TodoPriority    `json:"priority,omitempty"`
	DueDate     *time.Time              `json:"due_date,omitempty"`
	ClearDue    bool                    `json:"clear_due_date,omitempty"`
}

// DetectTodosRequest carries the text to scan and where it came from
type DetectTodosRequest struct {
	Text       string  `json:"text"`
	SourceID   *string `json:"source_id,omitempty"`
	SourceType string  `json:"source_type,omitempty"` // text, document, note, audio
}

// DetectTodosResult is the valid subset that was stored
type DetectTodosResult struct {
	Todos []models.Todo `json:"todos"`
	Count int           `json:"count"`
}
