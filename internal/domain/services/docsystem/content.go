package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
	"docassist/internal/httputil"
)

// DocumentService handles document business logic
type DocumentService interface {
	CreateDocument(ctx context.Context, caller *models.Caller, req *CreateDocumentRequest) (*docsystem.Document, error)
	GetDocument(ctx context.Context, caller *models.Caller, id string) (*docsystem.Document, error)
	ListDocuments(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Document, error)
	UpdateDocument(ctx context.Context, caller *models.Caller, id string, req *UpdateDocumentRequest) (*docsystem.Document, error)
	DeleteDocument(ctx context.Context, caller *models.Caller, id string) error
}

// NoteService handles note business logic
type NoteService interface {
	CreateNote(ctx context.Context, caller *models.Caller, req *CreateNoteRequest) (*docsystem.Note, error)
	GetNote(ctx context.Context, caller *models.Caller, id string) (*docsystem.Note, error)
	ListNotes(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Note, error)
	UpdateNote(ctx context.Context, caller *models.Caller, id string, req *UpdateNoteRequest) (*docsystem.Note, error)
	DeleteNote(ctx context.Context, caller *models.Caller, id string) error
}

// AudioService handles audio recording business logic
type AudioService interface {
	CreateAudio(ctx context.Context, caller *models.Caller, req *CreateAudioRequest) (*docsystem.Audio, error)
	GetAudio(ctx context.Context, caller *models.Caller, id string) (*docsystem.Audio, error)
	ListAudio(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Audio, error)
	UpdateAudio(ctx context.Context, caller *models.Caller, id string, req *UpdateAudioRequest) (*docsystem.Audio, error)
	DeleteAudio(ctx context.Context, caller *models.Caller, id string) error
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	FolderID *string `json:"folder_id,omitempty"`
	FileURL  *string `json:"file_url,omitempty"` // Set by upload handler
	FileType *string `json:"file_type,omitempty"`
	FileSize int64   `json:"file_size,omitempty"`
}

// UpdateDocumentRequest represents a document update request
type UpdateDocumentRequest struct {
	Title        *string                 `json:"title,omitempty"`
	Content      *string                 `json:"content,omitempty"`
	FolderID     httputil.OptionalString `json:"folder_id,omitempty"` // null = unfile
	DocumentType *string                 `json:"document_type,omitempty"`
}

// CreateNoteRequest represents a note creation request
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags,omitempty"`
	FolderID *string  `json:"folder_id,omitempty"`
}

// UpdateNoteRequest represents a note update request
type UpdateNoteRequest struct {
	Title    *string                 `json:"title,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	Tags     []string                `json:"tags,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id,omitempty"`
}

// CreateAudioRequest represents an audio creation request
type CreateAudioRequest struct {
	Title           string  `json:"title"`
	FileURL         string  `json:"file_url"`
	DurationSeconds int     `json:"duration_seconds"`
	Transcription   *string `json:"transcription,omitempty"`
	FolderID        *string `json:"folder_id,omitempty"`
}

// UpdateAudioRequest represents an audio update request
type UpdateAudioRequest struct {
	Title         *string                 `json:"title,omitempty"`
	Transcription *string                 `json:"transcription,omitempty"`
	FolderID      httputil.OptionalString `json:"folder_id,omitempty"`
}
