package memory

import (
	"context"
	"fmt"
	"sort"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
)

type todoRepo struct{ s *Store }

func (r *todoRepo) Create(ctx context.Context, caller *models.Caller, todo *models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todo.ID = newID()
	todo.UserID = caller.UserID
	todo.DeadlineNotificationSent = false
	todo.CreatedAt = r.s.stamp(todo.CreatedAt)
	todo.UpdatedAt = r.s.stamp(todo.UpdatedAt)
	r.s.todos[todo.ID] = *todo
	return nil
}

func (r *todoRepo) GetByID(ctx context.Context, caller *models.Caller, id string) (*models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todo, ok := r.s.todos[id]
	if !ok || todo.UserID != caller.UserID {
		return nil, fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	return &todo, nil
}

func (r *todoRepo) Update(ctx context.Context, caller *models.Caller, todo *models.Todo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.todos[todo.ID]
	if !ok || existing.UserID != caller.UserID {
		return fmt.Errorf("todo %s: %w", todo.ID, domain.ErrNotFound)
	}
	existing.Title = todo.Title
	existing.Description = todo.Description
	existing.Status = todo.Status
	existing.Priority = todo.Priority
	existing.DueDate = todo.DueDate
	existing.CompletedAt = todo.CompletedAt
	existing.UpdatedAt = r.s.stamp(todo.UpdatedAt)
	r.s.todos[todo.ID] = existing
	todo.DeadlineNotificationSent = existing.DeadlineNotificationSent
	return nil
}

func (r *todoRepo) Delete(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todo, ok := r.s.todos[id]
	if !ok || todo.UserID != caller.UserID {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.todos, id)
	return nil
}

func (r *todoRepo) List(ctx context.Context, caller *models.Caller, filter *models.TodoFilter) ([]models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Todo, 0)
	for _, todo := range r.s.todos {
		if todo.UserID != caller.UserID {
			continue
		}
		if filter != nil {
			if filter.Status != nil && todo.Status != *filter.Status {
				continue
			}
			if filter.Priority != nil && todo.Priority != *filter.Priority {
				continue
			}
			if filter.SourceID != nil && (todo.SourceID == nil || *todo.SourceID != *filter.SourceID) {
				continue
			}
		}
		out = append(out, todo)
	}
	sortByDue(out)
	return out, nil
}

func (r *todoRepo) ListDeadlineCandidates(ctx context.Context, caller *models.Caller) ([]models.Todo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Todo, 0)
	for _, todo := range r.s.todos {
		if todo.UserID == caller.UserID && isDeadlineCandidate(todo) {
			out = append(out, todo)
		}
	}
	sortByDue(out)
	return out, nil
}

func (r *todoRepo) ListDeadlineOwners(ctx context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := make(map[string]bool)
	owners := make([]string, 0)
	for _, todo := range r.s.todos {
		if isDeadlineCandidate(todo) && !seen[todo.UserID] {
			seen[todo.UserID] = true
			owners = append(owners, todo.UserID)
		}
	}
	sort.Strings(owners)
	return owners, nil
}

func (r *todoRepo) ClaimDeadlineNotification(ctx context.Context, caller *models.Caller, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todo, ok := r.s.todos[id]
	if !ok || todo.UserID != caller.UserID || todo.DeadlineNotificationSent {
		return false, nil
	}
	todo.DeadlineNotificationSent = true
	todo.UpdatedAt = r.s.Now()
	r.s.todos[id] = todo
	return true, nil
}

func (r *todoRepo) ReleaseDeadlineNotification(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	todo, ok := r.s.todos[id]
	if !ok || todo.UserID != caller.UserID {
		return fmt.Errorf("todo %s: %w", id, domain.ErrNotFound)
	}
	todo.DeadlineNotificationSent = false
	todo.UpdatedAt = r.s.Now()
	r.s.todos[id] = todo
	return nil
}

func isDeadlineCandidate(todo models.Todo) bool {
	return todo.Status.Open() && todo.DueDate != nil && !todo.DeadlineNotificationSent
}

// sortByDue orders by due date ascending with undated todos last, newest first within ties
func sortByDue(todos []models.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		switch {
		case a.DueDate == nil && b.DueDate != nil:
			return false
		case a.DueDate != nil && b.DueDate == nil:
			return true
		case a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
