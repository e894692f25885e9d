package handler

import (
	"log/slog"
	"net/http"

	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/httputil"
)

// OrganizeHandler exposes document classification and filing
type OrganizeHandler struct {
	organizer llmSvc.OrganizerService
	logger    *slog.Logger
}

func NewOrganizeHandler(organizer llmSvc.OrganizerService, logger *slog.Logger) *OrganizeHandler {
	return &OrganizeHandler{organizer: organizer, logger: logger}
}

// Classify returns the classification without moving anything
// POST /api/documents/{id}/classify
func (h *OrganizeHandler) Classify(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	classification, err := h.organizer.Classify(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, classification)
}

// Organize classifies the document and files it under the recommended folder
// POST /api/documents/{id}/organize
func (h *OrganizeHandler) Organize(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Document ID")
	if !ok {
		return
	}

	result, err := h.organizer.Organize(r.Context(), caller, id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}
