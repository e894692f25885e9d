package services

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
)

// SearchService finds documents and notes by text
type SearchService interface {
	Search(ctx context.Context, caller *models.Caller, query string, limit int) (*SearchResults, error)
}

// SearchResults groups hits by kind
type SearchResults struct {
	Query     string               `json:"query"`
	Documents []docsystem.Document `json:"documents"`
	Notes     []docsystem.Note     `json:"notes"`
	Engine    string               `json:"engine"` // "meilisearch" or "postgres"
}

// SearchIndexer keeps an external search index in sync with content writes.
// Index failures are logged by callers and never fail the write itself.
type SearchIndexer interface {
	IndexDocument(ctx context.Context, doc *docsystem.Document) error
	IndexNote(ctx context.Context, note *docsystem.Note) error
	Remove(ctx context.Context, kind docsystem.ContentKind, id string) error
}
