package docsystem

import "time"

// ContentCounts aggregates the items placed directly in one folder
type ContentCounts struct {
	DocumentCount int `json:"document_count"`
	NoteCount     int `json:"note_count"`
	AudioCount    int `json:"audio_count"`
}

// Total returns the number of content items across all kinds
func (c ContentCounts) Total() int {
	return c.DocumentCount + c.NoteCount + c.AudioCount
}

// FolderNode represents a folder in the tree with nested children
type FolderNode struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	ParentID  *string       `json:"parent_id"`
	Path      string        `json:"path"`
	CreatedAt time.Time     `json:"created_at"`
	Counts    ContentCounts `json:"counts"`
	Children  []*FolderNode `json:"children"` // Pointers for proper nesting
}

// FolderTree is the response for the full per-user folder forest
type FolderTree struct {
	Folders    []*FolderNode `json:"folders"`
	Unfiled    ContentCounts `json:"unfiled"` // Items with no folder
	TotalCount int           `json:"total_folders"`
}
