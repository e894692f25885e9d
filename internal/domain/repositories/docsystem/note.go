package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
)

// NoteRepository defines data access operations for notes
type NoteRepository interface {
	ContentPlacement

	Create(ctx context.Context, caller *models.Caller, note *docsystem.Note) error
	GetByID(ctx context.Context, caller *models.Caller, id string) (*docsystem.Note, error)
	Update(ctx context.Context, caller *models.Caller, note *docsystem.Note) error
	Delete(ctx context.Context, caller *models.Caller, id string) error
	List(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Note, error)
	Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsystem.Note, error)
}
