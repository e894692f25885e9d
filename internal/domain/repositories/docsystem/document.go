package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
)

// ContentPlacement is the part of every content repository that folder
// operations depend on: which folder each item lives in.
type ContentPlacement interface {
	// ListRefs returns id + folder_id of every item the caller owns
	ListRefs(ctx context.Context, caller *models.Caller) ([]docsystem.ContentRef, error)
}

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	ContentPlacement

	// Create creates a new document
	Create(ctx context.Context, caller *models.Caller, doc *docsystem.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, caller *models.Caller, id string) (*docsystem.Document, error)

	// Update updates title, content, folder and classification of a document
	Update(ctx context.Context, caller *models.Caller, doc *docsystem.Document) error

	// Delete deletes a document
	Delete(ctx context.Context, caller *models.Caller, id string) error

	// List lists documents, newest first. A non-nil folderID filters to that folder;
	// unfiled restricts to documents without a folder.
	List(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Document, error)

	// Search matches title and content case-insensitively
	Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsystem.Document, error)
}
