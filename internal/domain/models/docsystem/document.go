package docsystem

import (
	"time"
)

// ContentKind names the three kinds of content item that can be placed in a folder.
type ContentKind string

const (
	KindDocument ContentKind = "document"
	KindNote     ContentKind = "note"
	KindAudio    ContentKind = "audio"
)

// Valid reports whether k is one of the known content kinds.
func (k ContentKind) Valid() bool {
	switch k {
	case KindDocument, KindNote, KindAudio:
		return true
	}
	return false
}

type Document struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	FolderID     *string   `json:"folder_id" db:"folder_id"` // NULL = not in a folder
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"` // Extracted text
	FileURL      *string   `json:"file_url,omitempty" db:"file_url"`
	FileType     *string   `json:"file_type,omitempty" db:"file_type"`
	FileSize     int64     `json:"file_size" db:"file_size"`
	DocumentType *string   `json:"document_type,omitempty" db:"document_type"` // Set by classification
	FolderPath   string    `json:"folder_path,omitempty"`                     // Computed, not stored
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type Note struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	FolderID   *string   `json:"folder_id" db:"folder_id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	Tags       []string  `json:"tags" db:"tags"`
	FolderPath string    `json:"folder_path,omitempty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type Audio struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"user_id" db:"user_id"`
	FolderID        *string   `json:"folder_id" db:"folder_id"`
	Title           string    `json:"title" db:"title"`
	FileURL         string    `json:"file_url" db:"file_url"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	Transcription   *string   `json:"transcription,omitempty" db:"transcription"`
	FolderPath      string    `json:"folder_path,omitempty"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ContentRef is the minimal placement record used for folder counts and
// emptiness checks: which folder (if any) an item of a given kind lives in.
type ContentRef struct {
	ID       string      `json:"id"`
	Kind     ContentKind `json:"kind"`
	FolderID *string     `json:"folder_id"`
}

// ContentFilter narrows content listings. Unfiled wins over FolderID.
type ContentFilter struct {
	FolderID *string
	Unfiled  bool
}
