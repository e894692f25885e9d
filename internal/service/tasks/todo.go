// Package tasks implements todos and notifications.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
	"docassist/internal/domain/services"
	llmSvc "docassist/internal/domain/services/llm"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DueDateLayout is the calendar-date format used for extracted due dates
const DueDateLayout = "2006-01-02"

type todoService struct {
	todoRepo  repositories.TodoRepository
	extractor llmSvc.TodoExtractor
	notifier  *Notifier
	logger    *slog.Logger
}

// NewTodoService creates a new todo service. notifier may be nil, in which case
// detection does not announce itself.
func NewTodoService(
	todoRepo repositories.TodoRepository,
	extractor llmSvc.TodoExtractor,
	notifier *Notifier,
	logger *slog.Logger,
) services.TodoService {
	return &todoService{
		todoRepo:  todoRepo,
		extractor: extractor,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateTodo creates a manual todo
func (s *todoService) CreateTodo(ctx context.Context, caller *models.Caller, req *services.CreateTodoRequest) (*models.Todo, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Priority, validation.By(validPriority)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	now := time.Now()
	todo := &models.Todo{
		UserID:      caller.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TodoPending,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Source:      models.TodoSourceManual,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.todoRepo.Create(ctx, caller, todo); err != nil {
		return nil, err
	}

	s.logger.Info("todo created",
		"id", todo.ID,
		"user_id", caller.UserID,
		"priority", todo.Priority,
		"due_date", todo.DueDate,
	)

	return todo, nil
}

func (s *todoService) GetTodo(ctx context.Context, caller *models.Caller, id string) (*models.Todo, error) {
	return s.todoRepo.GetByID(ctx, caller, id)
}

// ListTodos lists the caller's todos, soonest due first
func (s *todoService) ListTodos(ctx context.Context, caller *models.Caller, filter *models.TodoFilter) ([]models.Todo, error) {
	if filter != nil {
		if filter.Status != nil && !filter.Status.Valid() {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid status %q", *filter.Status)}
		}
		if filter.Priority != nil && !filter.Priority.Valid() {
			return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid priority %q", *filter.Priority)}
		}
	}
	return s.todoRepo.List(ctx, caller, filter)
}

// UpdateTodo applies a partial update. The deadline flag is left as it is:
// reopening or rescheduling a todo does not re-arm its reminder.
func (s *todoService) UpdateTodo(ctx context.Context, caller *models.Caller, id string, req *services.UpdateTodoRequest) (*models.Todo, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Status, validation.By(validStatus)),
		validation.Field(&req.Priority, validation.By(validPriority)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	todo, err := s.todoRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if req.Title != nil {
		todo.Title = *req.Title
	}
	if req.Description.Present {
		todo.Description = req.Description.Value
	}
	if req.Priority != nil {
		todo.Priority = *req.Priority
	}
	if req.ClearDue {
		todo.DueDate = nil
	} else if req.DueDate != nil {
		todo.DueDate = req.DueDate
	}
	if req.Status != nil && *req.Status != todo.Status {
		todo.Status = *req.Status
		if todo.Status == models.TodoCompleted {
			todo.CompletedAt = &now
		} else {
			todo.CompletedAt = nil
		}
	}
	todo.UpdatedAt = now

	if err := s.todoRepo.Update(ctx, caller, todo); err != nil {
		return nil, err
	}

	s.logger.Info("todo updated", "id", todo.ID, "status", todo.Status, "user_id", caller.UserID)
	return todo, nil
}

func (s *todoService) DeleteTodo(ctx context.Context, caller *models.Caller, id string) error {
	if err := s.todoRepo.Delete(ctx, caller, id); err != nil {
		return err
	}
	s.logger.Info("todo deleted", "id", id, "user_id", caller.UserID)
	return nil
}

// DetectTodos runs extraction over req.Text and stores every valid candidate
func (s *todoService) DetectTodos(ctx context.Context, caller *models.Caller, req *services.DetectTodosRequest) (*services.DetectTodosResult, error) {
	if req.SourceType == "" {
		req.SourceType = models.TodoSourceTypeText
	}
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Text, validation.Required, validation.RuneLength(1, config.MaxDetectionTextLength)),
		validation.Field(&req.SourceType, validation.In(
			models.TodoSourceTypeText,
			models.TodoSourceTypeDoc,
			models.TodoSourceTypeNote,
			models.TodoSourceTypeAudio,
		)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	extracted, err := s.extractor.Extract(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("extract todos: %w", err)
	}

	result := &services.DetectTodosResult{Todos: make([]models.Todo, 0, len(extracted))}
	sourceType := req.SourceType
	for _, candidate := range extracted {
		now := time.Now()
		todo := &models.Todo{
			UserID:      caller.UserID,
			Title:       candidate.Title,
			Description: candidate.Description,
			Status:      models.TodoPending,
			Priority:    models.TodoPriority(candidate.Priority),
			DueDate:     parseDueDate(candidate.DueDate),
			Source:      models.TodoSourceAI,
			SourceID:    req.SourceID,
			SourceType:  &sourceType,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if !todo.Priority.Valid() {
			todo.Priority = models.PriorityMedium
		}

		if err := s.todoRepo.Create(ctx, caller, todo); err != nil {
			s.logger.Error("stored part of detected todos",
				"user_id", caller.UserID,
				"stored", len(result.Todos),
				"total", len(extracted),
				"error", err,
			)
			return nil, fmt.Errorf("store detected todo %q: %w", todo.Title, err)
		}
		result.Todos = append(result.Todos, *todo)
	}
	result.Count = len(result.Todos)

	s.logger.Info("todos detected",
		"user_id", caller.UserID,
		"source_type", sourceType,
		"source_id", req.SourceID,
		"count", result.Count,
	)

	if result.Count > 0 && s.notifier != nil {
		n := &models.Notification{
			Type:    models.NotificationTodosDetected,
			Title:   "New todos detected",
			Message: fmt.Sprintf("%d todo(s) were added from your %s", result.Count, sourceType),
			Data: models.JSONMap{
				"count":       result.Count,
				"source_type": sourceType,
				"source_id":   req.SourceID,
			},
		}
		if err := s.notifier.Notify(ctx, caller, n); err != nil {
			s.logger.Warn("failed to create detection notification", "user_id", caller.UserID, "error", err)
		}
	}

	return result, nil
}

// parseDueDate accepts a calendar date and returns midnight UTC; anything else is nil
func parseDueDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	due, err := time.Parse(DueDateLayout, strings.TrimSpace(*raw))
	if err != nil {
		return nil
	}
	return &due
}

func validPriority(value interface{}) error {
	var p models.TodoPriority
	switch v := value.(type) {
	case models.TodoPriority:
		p = v
	case *models.TodoPriority:
		if v == nil {
			return nil
		}
		p = *v
	}
	if !p.Valid() {
		return fmt.Errorf("must be one of High, Medium, Low")
	}
	return nil
}

func validStatus(value interface{}) error {
	var st models.TodoStatus
	switch v := value.(type) {
	case models.TodoStatus:
		st = v
	case *models.TodoStatus:
		if v == nil {
			return nil
		}
		st = *v
	}
	if !st.Valid() {
		return fmt.Errorf("must be one of pending, in_progress, completed, cancelled")
	}
	return nil
}
