// Package reminders creates deadline notifications for todos that are due soon or overdue.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
	"docassist/internal/domain/services"
	"docassist/internal/service/tasks"
)

// DefaultAdvance is how long before a due date the reminder fires
const DefaultAdvance = 24 * time.Hour

// DeadlineText describes how far away due is from now
func DeadlineText(due, now time.Time) string {
	until := due.Sub(now)
	if until <= 0 {
		return "is overdue"
	}

	hours := until.Hours()
	if hours < 24 {
		n := int(math.Ceil(hours))
		return fmt.Sprintf("is due in %d %s", n, plural(n, "hour"))
	}
	n := int(math.Ceil(hours / 24))
	return fmt.Sprintf("is due in %d %s", n, plural(n, "day"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// Sweeper implements services.DeadlineSweeper
type Sweeper struct {
	todoRepo repositories.TodoRepository
	notifier *tasks.Notifier
	advance  time.Duration
	logger   *slog.Logger
}

// NewSweeper creates a sweeper that fires advanceHours before each due date.
// A non-positive advanceHours falls back to DefaultAdvance.
func NewSweeper(todoRepo repositories.TodoRepository, notifier *tasks.Notifier, advanceHours int, logger *slog.Logger) *Sweeper {
	advance := time.Duration(advanceHours) * time.Hour
	if advance <= 0 {
		advance = DefaultAdvance
	}
	return &Sweeper{
		todoRepo: todoRepo,
		notifier: notifier,
		advance:  advance,
		logger:   logger,
	}
}

var _ services.DeadlineSweeper = (*Sweeper)(nil)

// Sweep checks every deadline candidate of the caller. A failure on one todo is
// logged and counted; the remaining todos are still processed.
func (s *Sweeper) Sweep(ctx context.Context, caller *models.Caller, now time.Time) (*services.SweepResult, error) {
	todos, err := s.todoRepo.ListDeadlineCandidates(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("list deadline candidates: %w", err)
	}

	result := &services.SweepResult{}
	for i := range todos {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		todo := &todos[i]
		result.Checked++
		if todo.DueDate == nil || now.Before(todo.DueDate.Add(-s.advance)) {
			continue
		}

		sent, err := s.notify(ctx, caller, todo, now)
		if err != nil {
			result.Failed++
			s.logger.Error("deadline notification failed",
				"todo_id", todo.ID,
				"user_id", caller.UserID,
				"error", err,
			)
			continue
		}
		if sent {
			result.Notified++
		}
	}

	s.logger.Info("deadline sweep finished",
		"user_id", caller.UserID,
		"checked", result.Checked,
		"notified", result.Notified,
		"failed", result.Failed,
	)
	return result, nil
}

// SweepAll runs Sweep for every owner with pending deadlines
func (s *Sweeper) SweepAll(ctx context.Context, now time.Time) (*services.SweepResult, error) {
	owners, err := s.todoRepo.ListDeadlineOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deadline owners: %w", err)
	}

	total := &services.SweepResult{}
	for _, userID := range owners {
		result, err := s.Sweep(ctx, &models.Caller{UserID: userID}, now)
		if result != nil {
			total.Add(result)
		}
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			s.logger.Error("deadline sweep failed for user", "user_id", userID, "error", err)
		}
	}
	return total, nil
}

// notify claims the todo's flag before inserting the notification, so concurrent
// sweeps emit one reminder per todo. A failed insert releases the claim.
func (s *Sweeper) notify(ctx context.Context, caller *models.Caller, todo *models.Todo, now time.Time) (bool, error) {
	claimed, err := s.todoRepo.ClaimDeadlineNotification(ctx, caller, todo.ID)
	if err != nil {
		return false, fmt.Errorf("claim deadline: %w", err)
	}
	if !claimed {
		return false, nil
	}

	due := *todo.DueDate
	kind := models.NotificationDeadlineReminder
	title := "Deadline approaching"
	if !due.After(now) {
		kind = models.NotificationDeadlineOverdue
		title = "Deadline passed"
	}

	n := &models.Notification{
		Type:    kind,
		Title:   title,
		Message: fmt.Sprintf("%q %s", todo.Title, DeadlineText(due, now)),
		Data: models.JSONMap{
			"todo_id":  todo.ID,
			"due_date": due.Format(time.RFC3339),
			"priority": string(todo.Priority),
		},
	}
	if err := s.notifier.Notify(ctx, caller, n); err != nil {
		if relErr := s.todoRepo.ReleaseDeadlineNotification(ctx, caller, todo.ID); relErr != nil {
			s.logger.Error("release deadline claim failed", "todo_id", todo.ID, "error", relErr)
		}
		return false, fmt.Errorf("create notification: %w", err)
	}
	return true, nil
}
