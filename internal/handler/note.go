package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "docassist/internal/domain/services/docsystem"
	"docassist/internal/httputil"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	noteService docsysSvc.NoteService
	logger      *slog.Logger
}

func NewNoteHandler(noteService docsysSvc.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{noteService: noteService, logger: logger}
}

// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var req docsysSvc.CreateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.CreateNote(r.Context(), caller, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, note)
}

// GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	filter, err := contentFilter(r)
	if err != nil {
		handleError(w, err)
		return
	}

	notes, err := h.noteService.ListNotes(r.Context(), caller, filter)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, notes)
}

// GET /api/notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Note ID")
	if !ok {
		return
	}

	note, err := h.noteService.GetNote(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// PATCH /api/notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Note ID")
	if !ok {
		return
	}

	var req docsysSvc.UpdateNoteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.noteService.UpdateNote(r.Context(), caller, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, note)
}

// DELETE /api/notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Note ID")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(r.Context(), caller, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
