package handler

import (
	"log/slog"
	"net/http"

	"docassist/internal/config"
	"docassist/internal/domain/services"
	"docassist/internal/httputil"
)

// SearchHandler handles text search over documents and notes
type SearchHandler struct {
	searchService services.SearchService
	logger        *slog.Logger
}

func NewSearchHandler(searchService services.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{searchService: searchService, logger: logger}
}

// GET /api/search?q=&limit=
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	limit := QueryInt(r, "limit", config.DefaultSearchLimit, 1, config.MaxSearchLimit)
	results, err := h.searchService.Search(r.Context(), caller, r.URL.Query().Get("q"), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}
