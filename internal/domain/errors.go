package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is lets errors.Is match the typed errors against the sentinels below
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder, note, audio)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// CycleError is returned when a folder move would make a folder its own ancestor.
// State is never mutated when this error is returned.
type CycleError struct {
	FolderID    string
	NewParentID string
}

func (e *CycleError) Error() string {
	if e.FolderID == e.NewParentID {
		return "cannot move folder into itself"
	}
	return "cannot move folder into one of its own subfolders"
}

// StatusCode implements the HTTPError interface
func (e *CycleError) StatusCode() int { return http.StatusConflict }

// NotEmptyError is returned when deleting a folder that still has subfolders or content.
type NotEmptyError struct {
	FolderID     string
	ChildFolders int
	Documents    int
	Notes        int
	Audio        int
}

func (e *NotEmptyError) Error() string {
	if e.ChildFolders > 0 {
		return "cannot delete folder with subfolders"
	}
	return fmt.Sprintf("cannot delete folder with content (%d documents, %d notes, %d audio)",
		e.Documents, e.Notes, e.Audio)
}

// StatusCode implements the HTTPError interface
func (e *NotEmptyError) StatusCode() int { return http.StatusConflict }

// MalformedResponseError is returned when a text-generation service answers with
// output that does not match the expected schema.
type MalformedResponseError struct {
	Operation string // e.g. "classify_document", "extract_todos"
	Reason    string
	Raw       string // raw model output, logged server-side only
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed model response: %s", e.Operation, e.Reason)
}

// StatusCode implements the HTTPError interface. Malformed model output is a
// collaborator failure from the caller's point of view.
func (e *MalformedResponseError) StatusCode() int { return http.StatusInternalServerError }
