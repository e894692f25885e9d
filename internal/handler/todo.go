package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/services"
	docsysSvc "docassist/internal/domain/services/docsystem"
	"docassist/internal/httputil"
	"docassist/internal/service/tasks"
)

// TodoHandler handles todo CRUD and AI detection requests
type TodoHandler struct {
	todoService  services.TodoService
	docService   docsysSvc.DocumentService
	noteService  docsysSvc.NoteService
	audioService docsysSvc.AudioService
	logger       *slog.Logger
}

// NewTodoHandler creates a todo handler. The content services feed detection
// from stored documents, notes and transcripts.
func NewTodoHandler(
	todoService services.TodoService,
	docService docsysSvc.DocumentService,
	noteService docsysSvc.NoteService,
	audioService docsysSvc.AudioService,
	logger *slog.Logger,
) *TodoHandler {
	return &TodoHandler{
		todoService:  todoService,
		docService:   docService,
		noteService:  noteService,
		audioService: audioService,
		logger:       logger,
	}
}

// createTodoBody accepts due_date as a calendar date or RFC 3339 timestamp
type createTodoBody struct {
	services.CreateTodoRequest
	DueDate *string `json:"due_date,omitempty"`
}

type updateTodoBody struct {
	services.UpdateTodoRequest
	DueDate *string `json:"due_date,omitempty"`
}

// parseDue reads "2006-01-02" (midnight UTC) or RFC 3339
func parseDue(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(tasks.DueDateLayout, value)
	if err != nil {
		return nil, &domain.ValidationError{Message: "due_date: must be YYYY-MM-DD or RFC 3339"}
	}
	return &t, nil
}

// CreateTodo creates a manual todo
// POST /api/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var body createTodoBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	due, err := parseDue(body.DueDate)
	if err != nil {
		handleError(w, err)
		return
	}
	req := body.CreateTodoRequest
	req.DueDate = due

	todo, err := h.todoService.CreateTodo(r.Context(), caller, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, todo)
}

// ListTodos lists todos, earliest due first
// GET /api/todos?status=&priority=&source_id=
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	sourceID, err := optionalUUIDQuery(r, "source_id")
	if err != nil {
		handleError(w, err)
		return
	}

	filter := &models.TodoFilter{SourceID: sourceID}
	if v := optionalQuery(r, "status"); v != nil {
		status := models.TodoStatus(*v)
		filter.Status = &status
	}
	if v := optionalQuery(r, "priority"); v != nil {
		priority := models.TodoPriority(*v)
		filter.Priority = &priority
	}

	todos, err := h.todoService.ListTodos(r.Context(), caller, filter)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, todos)
}

// GET /api/todos/{id}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Todo ID")
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodo(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, todo)
}

// UpdateTodo edits or completes a todo
// PATCH /api/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Todo ID")
	if !ok {
		return
	}

	var body updateTodoBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	due, err := parseDue(body.DueDate)
	if err != nil {
		handleError(w, err)
		return
	}
	req := body.UpdateTodoRequest
	req.DueDate = due

	todo, err := h.todoService.UpdateTodo(r.Context(), caller, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, todo)
}

// DELETE /api/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Todo ID")
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(r.Context(), caller, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExtractTodos detects todos in free text
// POST /api/todos/extract
func (h *TodoHandler) ExtractTodos(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var req services.DetectTodosRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.detect(w, r, caller, &req)
}

// DetectFromDocument detects todos in a stored document
// POST /api/documents/{id}/todos
func (h *TodoHandler) DetectFromDocument(w http.ResponseWriter, r *http.Request) {
	h.detectFromSource(w, r, models.TodoSourceTypeDoc, "Document ID", func(ctx context.Context, caller *models.Caller, id string) (string, error) {
		doc, err := h.docService.GetDocument(ctx, caller, id)
		if err != nil {
			return "", err
		}
		return doc.Content, nil
	})
}

// DetectFromNote detects todos in a note
// POST /api/notes/{id}/todos
func (h *TodoHandler) DetectFromNote(w http.ResponseWriter, r *http.Request) {
	h.detectFromSource(w, r, models.TodoSourceTypeNote, "Note ID", func(ctx context.Context, caller *models.Caller, id string) (string, error) {
		note, err := h.noteService.GetNote(ctx, caller, id)
		if err != nil {
			return "", err
		}
		return note.Content, nil
	})
}

// DetectFromAudio detects todos in a recording's transcript
// POST /api/audio/{id}/todos
func (h *TodoHandler) DetectFromAudio(w http.ResponseWriter, r *http.Request) {
	h.detectFromSource(w, r, models.TodoSourceTypeAudio, "Audio ID", func(ctx context.Context, caller *models.Caller, id string) (string, error) {
		audio, err := h.audioService.GetAudio(ctx, caller, id)
		if err != nil {
			return "", err
		}
		if audio.Transcription == nil {
			return "", &domain.ValidationError{Message: "audio has no transcription"}
		}
		return *audio.Transcription, nil
	})
}

func (h *TodoHandler) detectFromSource(
	w http.ResponseWriter,
	r *http.Request,
	sourceType, label string,
	load func(ctx context.Context, caller *models.Caller, id string) (string, error),
) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", label)
	if !ok {
		return
	}

	text, err := load(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "source has no text to scan")
		return
	}

	h.detect(w, r, caller, &services.DetectTodosRequest{
		Text:       text,
		SourceID:   &id,
		SourceType: sourceType,
	})
}

func (h *TodoHandler) detect(w http.ResponseWriter, r *http.Request, caller *models.Caller, req *services.DetectTodosRequest) {
	result, err := h.todoService.DetectTodos(r.Context(), caller, req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}
