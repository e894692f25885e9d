package handler

import (
	"log/slog"
	"net/http"

	docsysSvc "docassist/internal/domain/services/docsystem"
	"docassist/internal/httputil"
)

// AudioHandler handles audio recording HTTP requests
type AudioHandler struct {
	audioService docsysSvc.AudioService
	logger       *slog.Logger
}

func NewAudioHandler(audioService docsysSvc.AudioService, logger *slog.Logger) *AudioHandler {
	return &AudioHandler{audioService: audioService, logger: logger}
}

// POST /api/audio
func (h *AudioHandler) CreateAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var req docsysSvc.CreateAudioRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	audio, err := h.audioService.CreateAudio(r.Context(), caller, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, audio)
}

// GET /api/audio
func (h *AudioHandler) ListAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	filter, err := contentFilter(r)
	if err != nil {
		handleError(w, err)
		return
	}

	items, err := h.audioService.ListAudio(r.Context(), caller, filter)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, items)
}

// GET /api/audio/{id}
func (h *AudioHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Audio ID")
	if !ok {
		return
	}

	audio, err := h.audioService.GetAudio(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, audio)
}

// PATCH /api/audio/{id}
func (h *AudioHandler) UpdateAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Audio ID")
	if !ok {
		return
	}

	var req docsysSvc.UpdateAudioRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	audio, err := h.audioService.UpdateAudio(r.Context(), caller, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, audio)
}

// DELETE /api/audio/{id}
func (h *AudioHandler) DeleteAudio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Audio ID")
	if !ok {
		return
	}

	if err := h.audioService.DeleteAudio(r.Context(), caller, id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
