package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"docassist/internal/domain"
	"docassist/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Anything unrecognised is a 500 with a generic body; the cause is only logged.
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr  *domain.ConflictError
		cycleErr     *domain.CycleError
		notEmptyErr  *domain.NotEmptyError
		malformedErr *domain.MalformedResponseError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.As(err, &cycleErr):
		httputil.RespondError(w, http.StatusConflict, cycleErr.Error())
	case errors.As(err, &notEmptyErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmptyErr.Error(), map[string]interface{}{
			"child_folders": notEmptyErr.ChildFolders,
			"documents":     notEmptyErr.Documents,
			"notes":         notEmptyErr.Notes,
			"audio":         notEmptyErr.Audio,
		})
	case errors.As(err, &malformedErr):
		slog.Error("malformed model response",
			"operation", malformedErr.Operation,
			"reason", malformedErr.Reason,
			"raw", malformedErr.Raw,
		)
		httputil.RespondError(w, http.StatusInternalServerError, "the assistant returned an unusable response")
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
