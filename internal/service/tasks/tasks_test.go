package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/models/llm"
	"docassist/internal/domain/services"
	"docassist/internal/httputil"
	"docassist/internal/repository/memory"
)

var (
	alice = &models.Caller{UserID: "alice"}
	bob   = &models.Caller{UserID: "bob"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubExtractor struct {
	todos []llm.ExtractedTodo
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, text string) ([]llm.ExtractedTodo, error) {
	s.calls++
	return s.todos, s.err
}

type recordingPublisher struct {
	published []*models.Notification
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, n *models.Notification) error {
	p.published = append(p.published, n)
	return p.err
}

func strPtr(s string) *string { return &s }

func newTodoService(extractor *stubExtractor) (services.TodoService, *memory.Store) {
	store := memory.NewStore()
	notifier := NewNotifier(store.Notifications(), nil, discardLogger())
	return NewTodoService(store.Todos(), extractor, notifier, discardLogger()), store
}

func TestCreateTodo(t *testing.T) {
	svc, _ := newTodoService(&stubExtractor{})
	ctx := context.Background()

	tests := []struct {
		name         string
		req          services.CreateTodoRequest
		wantErr      bool
		wantPriority models.TodoPriority
	}{
		{"defaults to medium", services.CreateTodoRequest{Title: "  Write report  "}, false, models.PriorityMedium},
		{"explicit priority", services.CreateTodoRequest{Title: "Call", Priority: models.PriorityHigh}, false, models.PriorityHigh},
		{"blank title", services.CreateTodoRequest{Title: "   "}, true, ""},
		{"lowercase priority rejected", services.CreateTodoRequest{Title: "x", Priority: "high"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			todo, err := svc.CreateTodo(ctx, alice, &req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTodo: %v", err)
			}
			if todo.ID == "" || todo.Status != models.TodoPending || todo.Source != models.TodoSourceManual {
				t.Errorf("todo = %+v", todo)
			}
			if todo.Priority != tt.wantPriority {
				t.Errorf("priority = %q, want %q", todo.Priority, tt.wantPriority)
			}
			if todo.Title != "Write report" && tt.name == "defaults to medium" {
				t.Errorf("title not trimmed: %q", todo.Title)
			}
		})
	}
}

func TestUpdateTodo_CompletionTimestamps(t *testing.T) {
	svc, _ := newTodoService(&stubExtractor{})
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, alice, &services.CreateTodoRequest{Title: "Ship"})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	completed := models.TodoCompleted
	updated, err := svc.UpdateTodo(ctx, alice, todo.ID, &services.UpdateTodoRequest{Status: &completed})
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("completed_at not set")
	}

	pending := models.TodoPending
	reopened, err := svc.UpdateTodo(ctx, alice, todo.ID, &services.UpdateTodoRequest{Status: &pending})
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Error("completed_at not cleared on reopen")
	}
}

func TestUpdateTodo_Fields(t *testing.T) {
	svc, _ := newTodoService(&stubExtractor{})
	ctx := context.Background()

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	todo, err := svc.CreateTodo(ctx, alice, &services.CreateTodoRequest{
		Title:       "Plan",
		Description: strPtr("quarterly"),
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	updated, err := svc.UpdateTodo(ctx, alice, todo.ID, &services.UpdateTodoRequest{
		Description: httputil.OptionalString{Present: true},
		ClearDue:    true,
	})
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if updated.Description != nil || updated.DueDate != nil {
		t.Errorf("description=%v due=%v, want both cleared", updated.Description, updated.DueDate)
	}

	bad := models.TodoStatus("done")
	if _, err := svc.UpdateTodo(ctx, alice, todo.ID, &services.UpdateTodoRequest{Status: &bad}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("invalid status err = %v", err)
	}
}

func TestTodoIsolation(t *testing.T) {
	svc, _ := newTodoService(&stubExtractor{})
	ctx := context.Background()

	todo, err := svc.CreateTodo(ctx, alice, &services.CreateTodoRequest{Title: "Private"})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	if _, err := svc.GetTodo(ctx, bob, todo.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTodo as other user err = %v, want not found", err)
	}
	if err := svc.DeleteTodo(ctx, bob, todo.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteTodo as other user err = %v, want not found", err)
	}
	list, err := svc.ListTodos(ctx, bob, nil)
	if err != nil || len(list) != 0 {
		t.Errorf("bob sees %d todos (err %v)", len(list), err)
	}
}

func TestListTodos_InvalidFilter(t *testing.T) {
	svc, _ := newTodoService(&stubExtractor{})

	bad := models.TodoPriority("urgent")
	_, err := svc.ListTodos(context.Background(), alice, &models.TodoFilter{Priority: &bad})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestDetectTodos(t *testing.T) {
	extractor := &stubExtractor{todos: []llm.ExtractedTodo{
		{Title: "Send invoice", Priority: "High", DueDate: strPtr("2026-04-02")},
		{Title: "Book room", Priority: "whenever", DueDate: strPtr("next week")},
	}}
	svc, store := newTodoService(extractor)
	ctx := context.Background()

	result, err := svc.DetectTodos(ctx, alice, &services.DetectTodosRequest{
		Text:       "Send the invoice by April 2nd and book a room",
		SourceID:   strPtr("doc-1"),
		SourceType: models.TodoSourceTypeDoc,
	})
	if err != nil {
		t.Fatalf("DetectTodos: %v", err)
	}
	if result.Count != 2 || len(result.Todos) != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}

	first, second := result.Todos[0], result.Todos[1]
	if first.Source != models.TodoSourceAI || first.SourceType == nil || *first.SourceType != models.TodoSourceTypeDoc {
		t.Errorf("first source = %q/%v", first.Source, first.SourceType)
	}
	if first.DueDate == nil || !first.DueDate.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first due = %v", first.DueDate)
	}
	if second.Priority != models.PriorityMedium {
		t.Errorf("unknown priority mapped to %q, want Medium", second.Priority)
	}
	if second.DueDate != nil {
		t.Errorf("unparseable due date kept: %v", second.DueDate)
	}

	notifications, err := store.Notifications().List(ctx, alice, false, 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Type != models.NotificationTodosDetected {
		t.Errorf("notifications = %+v", notifications)
	}
}

func TestDetectTodos_NothingFoundNoNotification(t *testing.T) {
	svc, store := newTodoService(&stubExtractor{})
	ctx := context.Background()

	result, err := svc.DetectTodos(ctx, alice, &services.DetectTodosRequest{Text: "Nice weather today"})
	if err != nil {
		t.Fatalf("DetectTodos: %v", err)
	}
	if result.Count != 0 || result.Todos == nil {
		t.Errorf("result = %+v, want empty non-nil list", result)
	}

	count, err := store.Notifications().CountUnread(ctx, alice)
	if err != nil || count != 0 {
		t.Errorf("unread = %d (err %v), want 0", count, err)
	}
}

func TestDetectTodos_Validation(t *testing.T) {
	extractor := &stubExtractor{}
	svc, _ := newTodoService(extractor)

	tests := []struct {
		name string
		req  services.DetectTodosRequest
	}{
		{"empty text", services.DetectTodosRequest{Text: ""}},
		{"unknown source type", services.DetectTodosRequest{Text: "x", SourceType: "email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.DetectTodos(context.Background(), alice, &req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
	if extractor.calls != 0 {
		t.Errorf("extractor called %d times for invalid input", extractor.calls)
	}
}

func TestDetectTodos_ExtractorErrorPropagates(t *testing.T) {
	malformed := &domain.MalformedResponseError{Operation: "extract_todos", Reason: "not json"}
	svc, _ := newTodoService(&stubExtractor{err: malformed})

	_, err := svc.DetectTodos(context.Background(), alice, &services.DetectTodosRequest{Text: "x"})
	var target *domain.MalformedResponseError
	if !errors.As(err, &target) {
		t.Errorf("err = %v, want MalformedResponseError", err)
	}
}

func TestNotifier_PublishErrorIsNotFatal(t *testing.T) {
	store := memory.NewStore()
	pub := &recordingPublisher{err: errors.New("redis down")}
	notifier := NewNotifier(store.Notifications(), pub, discardLogger())

	n := &models.Notification{Type: models.NotificationDeadlineReminder, Title: "Due soon", Message: "x"}
	if err := notifier.Notify(context.Background(), alice, n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.ID == "" || n.Data == nil {
		t.Errorf("notification not stored: %+v", n)
	}
	if len(pub.published) != 1 || pub.published[0].ID != n.ID {
		t.Errorf("published = %+v", pub.published)
	}
}

func TestNotificationService(t *testing.T) {
	store := memory.NewStore()
	notifier := NewNotifier(store.Notifications(), nil, discardLogger())
	svc := NewNotificationService(store.Notifications(), discardLogger())
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		n := &models.Notification{Type: models.NotificationDeadlineReminder, Title: "t", Message: "m"}
		if err := notifier.Notify(ctx, alice, n); err != nil {
			t.Fatalf("Notify: %v", err)
		}
		ids = append(ids, n.ID)
	}

	if count, _ := svc.UnreadCount(ctx, alice); count != 3 {
		t.Fatalf("unread = %d, want 3", count)
	}

	read, err := svc.MarkRead(ctx, alice, ids[0])
	if err != nil || !read.Read || read.ReadAt == nil {
		t.Fatalf("MarkRead = %+v, %v", read, err)
	}
	unread, err := svc.ListNotifications(ctx, alice, true, 0)
	if err != nil || len(unread) != 2 {
		t.Errorf("unread list = %d (err %v), want 2", len(unread), err)
	}

	back, err := svc.MarkUnread(ctx, alice, ids[0])
	if err != nil || back.Read || back.ReadAt != nil {
		t.Errorf("MarkUnread = %+v, %v", back, err)
	}

	if _, err := svc.MarkRead(ctx, bob, ids[1]); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-user MarkRead err = %v, want not found", err)
	}

	changed, err := svc.MarkAllRead(ctx, alice)
	if err != nil || changed != 3 {
		t.Errorf("MarkAllRead = %d, %v; want 3", changed, err)
	}
	if count, _ := svc.UnreadCount(ctx, alice); count != 0 {
		t.Errorf("unread after mark all = %d", count)
	}
}

func TestListNotifications_LimitClamped(t *testing.T) {
	store := memory.NewStore()
	notifier := NewNotifier(store.Notifications(), nil, discardLogger())
	svc := NewNotificationService(store.Notifications(), discardLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := notifier.Notify(ctx, alice, &models.Notification{Type: "x", Title: "t", Message: "m"}); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	got, err := svc.ListNotifications(ctx, alice, false, 2)
	if err != nil || len(got) != 2 {
		t.Errorf("limit 2 returned %d (err %v)", len(got), err)
	}
	got, err = svc.ListNotifications(ctx, alice, false, 10_000)
	if err != nil || len(got) != 5 {
		t.Errorf("huge limit returned %d (err %v)", len(got), err)
	}
}
