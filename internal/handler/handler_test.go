package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"docassist/internal/domain/models"
	"docassist/internal/domain/services"
	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/handler/sse"
	"docassist/internal/httputil"
	"docassist/internal/repository/memory"
	"docassist/internal/search"
	"docassist/internal/service"
	"docassist/internal/service/assistant"
	"docassist/internal/service/docsystem"
	"docassist/internal/service/docsystem/converter"
	"docassist/internal/service/reminders"
	"docassist/internal/service/tasks"
)

var testCaller = &models.Caller{UserID: "user-1", Email: "user1@example.com"}

// fakeGenerator answers with whatever text the test sets
type fakeGenerator struct {
	mu   sync.Mutex
	text string
}

func (g *fakeGenerator) set(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.text = text
}

func (g *fakeGenerator) Generate(ctx context.Context, req *llmSvc.TextRequest) (*llmSvc.TextResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &llmSvc.TextResponse{Text: g.text, Model: "lorem-fast"}, nil
}

// testServer is the full route table over the in-memory store
type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *memory.Store
	gen     *fakeGenerator
	caller  *models.Caller
}

func newTestServer(t *testing.T, subscriber services.NotificationSubscriber, files services.FileStore) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	gen := &fakeGenerator{}

	prompts, err := assistant.LoadPrompts()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	validator := docsystem.NewResourceValidator(store.Folders())
	folderSvc := docsystem.NewFolderService(store.Folders(), store.Documents(), store.Notes(), store.Audio(), logger)
	docSvc := docsystem.NewDocumentService(store.Documents(), store.Folders(), validator, nil, logger)
	noteSvc := docsystem.NewNoteService(store.Notes(), store.Folders(), validator, nil, logger)
	audioSvc := docsystem.NewAudioService(store.Audio(), store.Folders(), validator, logger)

	notifier := tasks.NewNotifier(store.Notifications(), nil, logger)
	extractor := assistant.NewTodoExtractor(gen, prompts, "", logger)
	todoSvc := tasks.NewTodoService(store.Todos(), extractor, notifier, logger)
	sweeper := reminders.NewSweeper(store.Todos(), notifier, 24, logger)
	classifier := assistant.NewDocumentClassifier(gen, prompts, "", logger)
	chatSvc := assistant.NewChatService(assistant.ChatRepositories{
		Chat:      store.Chat(),
		Folders:   store.Folders(),
		Documents: store.Documents(),
		Notes:     store.Notes(),
		Audio:     store.Audio(),
	}, gen, prompts, logger)

	mux := http.NewServeMux()
	RegisterRoutes(mux, &Handlers{
		Health:        NewHealthHandler(nil),
		Folders:       NewFolderHandler(folderSvc, logger),
		Documents:     NewDocumentHandler(docSvc, logger),
		Notes:         NewNoteHandler(noteSvc, logger),
		Audio:         NewAudioHandler(audioSvc, logger),
		Uploads:       NewUploadHandler(files, converter.NewRegistry(), docSvc, audioSvc, logger),
		Todos:         NewTodoHandler(todoSvc, docSvc, noteSvc, audioSvc, logger),
		Notifications: NewNotificationHandler(tasks.NewNotificationService(store.Notifications(), logger), subscriber, sweeper, &sse.Config{KeepAliveInterval: time.Hour}, logger),
		Organize:      NewOrganizeHandler(assistant.NewOrganizerService(docSvc, folderSvc, classifier, logger), logger),
		Chat:          NewChatHandler(chatSvc, logger),
		Search:        NewSearchHandler(search.NewService(nil, store.Documents(), store.Notes(), logger), logger),
		Preferences:   NewUserPreferencesHandler(service.NewUserPreferencesService(store.Preferences(), logger), logger),
	})

	ts := &testServer{t: t, store: store, gen: gen, caller: testCaller}
	ts.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ts.caller != nil {
			r = httputil.WithCaller(r, ts.caller)
		}
		mux.ServeHTTP(w, r)
	})
	return ts
}

func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	rec := ts.do("GET", "/health", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestUnauthenticated(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.caller = nil
	expectStatus(t, ts.do("GET", "/api/todos", nil), http.StatusUnauthorized)
}

func TestInvalidPathID(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	expectStatus(t, ts.do("GET", "/api/documents/not-a-uuid", nil), http.StatusBadRequest)
}

func TestMalformedIDs(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	for _, path := range []string{
		"/api/documents?folder_id=not-a-uuid",
		"/api/notes?folder_id=not-a-uuid",
		"/api/audio?folder_id=not-a-uuid",
		"/api/todos?source_id=not-a-uuid",
	} {
		t.Run(path, func(t *testing.T) {
			expectStatus(t, ts.do("GET", path, nil), http.StatusBadRequest)
		})
	}

	t.Run("folder parent_id", func(t *testing.T) {
		rec := ts.do("POST", "/api/folders", map[string]string{"name": "Work", "parent_id": "not-a-uuid"})
		expectStatus(t, rec, http.StatusBadRequest)

		rec = ts.do("POST", "/api/folders", map[string]string{"name": "Work"})
		expectStatus(t, rec, http.StatusCreated)
		id := decode[map[string]interface{}](t, rec)["id"].(string)
		rec = ts.do("PATCH", "/api/folders/"+id, map[string]string{"parent_id": "not-a-uuid"})
		expectStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("document folder_id", func(t *testing.T) {
		rec := ts.do("POST", "/api/documents", map[string]string{"title": "Plan", "folder_id": "not-a-uuid"})
		expectStatus(t, rec, http.StatusBadRequest)
	})
}

func TestFolderRoutes(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/folders", map[string]string{"name": "Work/Projects"})
	expectStatus(t, rec, http.StatusCreated)
	projects := decode[map[string]interface{}](t, rec)
	if projects["path"] != "Work/Projects" {
		t.Errorf("path = %v, want Work/Projects", projects["path"])
	}
	projectsID := projects["id"].(string)
	workID := projects["parent_id"].(string)

	// Duplicate name returns the existing folder
	rec = ts.do("POST", "/api/folders", map[string]interface{}{"name": "Projects", "parent_id": workID})
	expectStatus(t, rec, http.StatusConflict)
	if existing := decode[map[string]interface{}](t, rec); existing["id"] != projectsID {
		t.Errorf("conflict body id = %v, want %s", existing["id"], projectsID)
	}

	// Moving a folder under its own descendant is a cycle
	rec = ts.do("PATCH", "/api/folders/"+workID, map[string]interface{}{"parent_id": projectsID})
	expectStatus(t, rec, http.StatusConflict)

	// Non-empty folders cannot be deleted
	expectStatus(t, ts.do("DELETE", "/api/folders/"+workID, nil), http.StatusConflict)

	rec = ts.do("GET", "/api/folders/tree", nil)
	expectStatus(t, rec, http.StatusOK)
	tree := decode[map[string]interface{}](t, rec)
	if tree["total_folders"] != float64(2) {
		t.Errorf("total_folders = %v, want 2", tree["total_folders"])
	}

	expectStatus(t, ts.do("DELETE", "/api/folders/"+projectsID, nil), http.StatusNoContent)
	expectStatus(t, ts.do("DELETE", "/api/folders/"+workID, nil), http.StatusNoContent)
}

func TestDocumentRoutes_CallerIsolation(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/documents", map[string]string{"title": "Plan", "content": "ship it"})
	expectStatus(t, rec, http.StatusCreated)
	doc := decode[map[string]interface{}](t, rec)
	id := doc["id"].(string)
	if doc["folder_path"] != "No folder" {
		t.Errorf("folder_path = %v", doc["folder_path"])
	}

	expectStatus(t, ts.do("POST", "/api/documents", map[string]string{"title": "  "}), http.StatusBadRequest)

	ts.caller = &models.Caller{UserID: "user-2"}
	expectStatus(t, ts.do("GET", "/api/documents/"+id, nil), http.StatusNotFound)
	expectStatus(t, ts.do("DELETE", "/api/documents/"+id, nil), http.StatusNotFound)

	ts.caller = testCaller
	rec = ts.do("PATCH", "/api/documents/"+id, map[string]string{"title": "Plan v2"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]interface{}](t, rec)["title"]; got != "Plan v2" {
		t.Errorf("title = %v", got)
	}
	expectStatus(t, ts.do("DELETE", "/api/documents/"+id, nil), http.StatusNoContent)
}

func TestTodoRoutes(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/todos", map[string]string{"title": "Write report", "due_date": "2026-10-20"})
	expectStatus(t, rec, http.StatusCreated)
	todo := decode[models.Todo](t, rec)
	if todo.Priority != models.PriorityMedium || todo.Status != models.TodoPending {
		t.Errorf("defaults not applied: %+v", todo)
	}
	if todo.DueDate == nil || !todo.DueDate.Equal(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due_date = %v", todo.DueDate)
	}

	expectStatus(t, ts.do("POST", "/api/todos", map[string]string{"title": "x", "due_date": "next week"}), http.StatusBadRequest)

	rec = ts.do("PATCH", "/api/todos/"+todo.ID, map[string]string{"status": "completed"})
	expectStatus(t, rec, http.StatusOK)
	if updated := decode[models.Todo](t, rec); updated.CompletedAt == nil {
		t.Error("completed_at should be set")
	}

	rec = ts.do("GET", "/api/todos?status=completed", nil)
	expectStatus(t, rec, http.StatusOK)
	if list := decode[[]models.Todo](t, rec); len(list) != 1 {
		t.Errorf("got %d completed todos, want 1", len(list))
	}
}

func TestDetectTodosFromDocument(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/documents", map[string]string{"title": "Minutes", "content": "Alice sends the report by Monday."})
	expectStatus(t, rec, http.StatusCreated)
	docID := decode[map[string]interface{}](t, rec)["id"].(string)

	ts.gen.set(`[
		{"title": "Send the report", "priority": "High", "due_date": "2026-10-19"},
		{"title": "", "priority": "Low"}
	]`)
	rec = ts.do("POST", "/api/documents/"+docID+"/todos", nil)
	expectStatus(t, rec, http.StatusCreated)

	result := decode[services.DetectTodosResult](t, rec)
	if result.Count != 1 || len(result.Todos) != 1 {
		t.Fatalf("count = %d, want 1", result.Count)
	}
	got := result.Todos[0]
	if got.Source != models.TodoSourceAI || got.SourceID == nil || *got.SourceID != docID {
		t.Errorf("source fields = %q %v", got.Source, got.SourceID)
	}
	if got.SourceType == nil || *got.SourceType != models.TodoSourceTypeDoc {
		t.Errorf("source_type = %v", got.SourceType)
	}

	// Detection announces itself
	rec = ts.do("GET", "/api/notifications/unread-count", nil)
	expectStatus(t, rec, http.StatusOK)
	if n := decode[map[string]int](t, rec)["count"]; n != 1 {
		t.Errorf("unread = %d, want 1", n)
	}
}

func TestClassify_MalformedResponse(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/documents", map[string]string{"title": "Memo", "content": "hello"})
	expectStatus(t, rec, http.StatusCreated)
	docID := decode[map[string]interface{}](t, rec)["id"].(string)

	ts.gen.set("I think this is a memo.")
	rec = ts.do("POST", "/api/documents/"+docID+"/classify", nil)
	expectStatus(t, rec, http.StatusInternalServerError)
	if strings.Contains(rec.Body.String(), "memo") {
		t.Errorf("raw model output leaked: %s", rec.Body.String())
	}
}

func TestOrganizeDocument(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do("POST", "/api/documents", map[string]string{"title": "Standup", "content": "notes"})
	expectStatus(t, rec, http.StatusCreated)
	docID := decode[map[string]interface{}](t, rec)["id"].(string)

	ts.gen.set(`{
		"document_type": "meeting_notes",
		"confidence": 0.9,
		"folder_recommendation": {"name": "Standups", "parent_path": "Team", "subfolders": [], "confidence": 0.8, "reasoning": "sync"},
		"organization_insights": {"key_topics": [], "summary": "s", "tags": []}
	}`)
	rec = ts.do("POST", "/api/documents/"+docID+"/organize", nil)
	expectStatus(t, rec, http.StatusOK)

	result := decode[llmSvc.OrganizeResult](t, rec)
	if result.Folder == nil || result.Folder.Path != "Team/Standups" {
		t.Fatalf("folder = %+v", result.Folder)
	}
	if result.Document.FolderID == nil || *result.Document.FolderID != result.Folder.ID {
		t.Errorf("document not moved into %s", result.Folder.ID)
	}
}

func TestDeadlineCheckAndNotifications(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	due := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	expectStatus(t, ts.do("POST", "/api/todos", map[string]string{"title": "Submit", "due_date": due}), http.StatusCreated)

	rec := ts.do("POST", "/api/todos/deadline-check", nil)
	expectStatus(t, rec, http.StatusOK)
	if res := decode[services.SweepResult](t, rec); res.Notified != 1 {
		t.Fatalf("notified = %d, want 1", res.Notified)
	}

	// Second run does not notify again
	rec = ts.do("POST", "/api/todos/deadline-check", nil)
	expectStatus(t, rec, http.StatusOK)
	if res := decode[services.SweepResult](t, rec); res.Notified != 0 {
		t.Errorf("second sweep notified %d", res.Notified)
	}

	rec = ts.do("GET", "/api/notifications?unread=true", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decode[[]models.Notification](t, rec)
	if len(list) != 1 || list[0].Type != models.NotificationDeadlineReminder {
		t.Fatalf("notifications = %+v", list)
	}

	expectStatus(t, ts.do("POST", "/api/notifications/"+list[0].ID+"/read", nil), http.StatusOK)
	rec = ts.do("GET", "/api/notifications/unread-count", nil)
	if n := decode[map[string]int](t, rec)["count"]; n != 0 {
		t.Errorf("unread = %d after mark read", n)
	}
}

func TestSearchRoute(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	expectStatus(t, ts.do("POST", "/api/notes", map[string]string{"title": "Budget", "content": "q3"}), http.StatusCreated)

	rec := ts.do("GET", "/api/search?q=budget", nil)
	expectStatus(t, rec, http.StatusOK)
	res := decode[services.SearchResults](t, rec)
	if res.Engine != search.EnginePostgres || len(res.Notes) != 1 {
		t.Errorf("results = %+v", res)
	}

	expectStatus(t, ts.do("GET", "/api/search?q=", nil), http.StatusBadRequest)
}

func TestChatRoutes(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	ts.gen.set("You have no documents yet.")

	rec := ts.do("POST", "/api/chat/messages", map[string]string{"content": "What do I have?"})
	expectStatus(t, rec, http.StatusCreated)
	exchange := decode[llmSvc.ChatExchange](t, rec)
	if exchange.AssistantMessage == nil || exchange.AssistantMessage.Content != "You have no documents yet." {
		t.Errorf("assistant = %+v", exchange.AssistantMessage)
	}

	rec = ts.do("GET", "/api/chat/messages", nil)
	expectStatus(t, rec, http.StatusOK)
	if msgs := decode[[]map[string]interface{}](t, rec); len(msgs) != 2 {
		t.Errorf("history has %d messages, want 2", len(msgs))
	}

	rec = ts.do("DELETE", "/api/chat/messages", nil)
	expectStatus(t, rec, http.StatusOK)
	if n := decode[map[string]int64](t, rec)["deleted"]; n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
}

func TestPreferencesRoutes(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	expectStatus(t, ts.do("GET", "/api/users/me/preferences", nil), http.StatusOK)
	rec := ts.do("PATCH", "/api/users/me/preferences", map[string]interface{}{"ui": map[string]string{"theme": "dark"}})
	expectStatus(t, rec, http.StatusOK)
	expectStatus(t, ts.do("PATCH", "/api/users/me/preferences", map[string]interface{}{"ui": map[string]string{"theme": "neon"}}), http.StatusBadRequest)
}

// chanSubscriber hands out a channel the test controls
type chanSubscriber struct{ ch chan models.Notification }

func (s *chanSubscriber) Subscribe(ctx context.Context, caller *models.Caller) (<-chan models.Notification, error) {
	return s.ch, nil
}

func TestNotificationStream(t *testing.T) {
	sub := &chanSubscriber{ch: make(chan models.Notification, 1)}
	ts := newTestServer(t, sub, nil)

	sub.ch <- models.Notification{ID: "n1", Type: models.NotificationDeadlineOverdue, Title: "Overdue"}
	close(sub.ch)

	rec := ts.do("GET", "/api/notifications/stream", nil)
	expectStatus(t, rec, http.StatusOK)

	body := rec.Body.String()
	if !strings.Contains(body, "event: ready\n") {
		t.Errorf("missing ready event: %q", body)
	}
	if !strings.Contains(body, "event: notification\n") || !strings.Contains(body, `"id":"n1"`) {
		t.Errorf("missing notification event: %q", body)
	}
}

func TestNotificationStream_NotConfigured(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	expectStatus(t, ts.do("GET", "/api/notifications/stream", nil), http.StatusServiceUnavailable)
}
