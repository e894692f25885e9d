package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
)

// FolderRepository defines data access operations for folders.
// Every method is scoped to the caller; a folder owned by someone else is reported as not found.
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, caller *models.Caller, folder *docsystem.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, caller *models.Caller, id string) (*docsystem.Folder, error)

	// Update updates name and parent of a folder
	Update(ctx context.Context, caller *models.Caller, folder *docsystem.Folder) error

	// Delete deletes a folder. Emptiness is checked by the service, not here.
	Delete(ctx context.Context, caller *models.Caller, id string) error

	// ListAll retrieves all of the caller's folders (flat list, ordered by name)
	ListAll(ctx context.Context, caller *models.Caller) ([]docsystem.Folder, error)

	// ListChildren lists immediate child folders (nil = root level)
	ListChildren(ctx context.Context, caller *models.Caller, parentID *string) ([]docsystem.Folder, error)

	// CreateIfNotExists returns the folder with this name under parentID, creating it if needed
	CreateIfNotExists(ctx context.Context, caller *models.Caller, parentID *string, name string) (*docsystem.Folder, error)
}
