package handler

import (
	"net/http"
	"strconv"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/httputil"

	"github.com/google/uuid"
)

// PathParam reads and validates a UUID path parameter. On failure it writes
// a 400 and returns false.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid "+label+" format")
		return "", false
	}
	return value, true
}

// QueryInt parses an integer query parameter, clamped to [min, max].
// Missing or malformed values yield def.
func QueryInt(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// QueryBool parses a boolean query parameter, false when missing or malformed
func QueryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// optionalQuery returns a pointer to a non-empty query value
func optionalQuery(r *http.Request, name string) *string {
	if v := r.URL.Query().Get(name); v != "" {
		return &v
	}
	return nil
}

// optionalUUIDQuery is optionalQuery for id parameters; a malformed value is a validation error
func optionalUUIDQuery(r *http.Request, name string) (*string, error) {
	v := optionalQuery(r, name)
	if v == nil {
		return nil, nil
	}
	if _, err := uuid.Parse(*v); err != nil {
		return nil, &domain.ValidationError{Message: "invalid " + name + " format"}
	}
	return v, nil
}

// callerOf returns the authenticated caller or writes a 401
func callerOf(w http.ResponseWriter, r *http.Request) (*models.Caller, bool) {
	caller := httputil.GetCaller(r)
	if !caller.Valid() {
		httputil.RespondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return caller, true
}
