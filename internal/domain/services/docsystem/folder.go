package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
	"docassist/internal/httputil"
)

// FolderService handles folder business logic
type FolderService interface {
	// CreateFolder creates a folder. Name may use "a/b/c" notation; intermediate
	// folders are created one at a time and are left in place if a later step fails.
	CreateFolder(ctx context.Context, caller *models.Caller, req *CreateFolderRequest) (*docsystem.Folder, error)

	// GetFolder retrieves a folder with its computed path
	GetFolder(ctx context.Context, caller *models.Caller, id string) (*docsystem.Folder, error)

	// ListFolders returns every folder (sorted by name) with computed paths
	ListFolders(ctx context.Context, caller *models.Caller) ([]docsystem.Folder, error)

	// GetTree returns the nested folder forest with per-folder content counts
	GetTree(ctx context.Context, caller *models.Caller) (*docsystem.FolderTree, error)

	// UpdateFolder renames and/or moves a folder; moves are rejected with *domain.CycleError
	UpdateFolder(ctx context.Context, caller *models.Caller, id string, req *UpdateFolderRequest) (*docsystem.Folder, error)

	// DeleteFolder deletes an empty folder; otherwise returns *domain.NotEmptyError
	DeleteFolder(ctx context.Context, caller *models.Caller, id string) error

	// EnsurePath returns the folder at the given "a/b/c" path below parentID (nil for root),
	// creating missing segments. A leading "/" ignores parentID.
	EnsurePath(ctx context.Context, caller *models.Caller, parentID *string, path string) (*docsystem.Folder, error)

	// ResolvePath returns the display path of a folder, or "No folder"
	ResolvePath(ctx context.Context, caller *models.Caller, folderID *string) (string, error)
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// UpdateFolderRequest represents a folder update request
type UpdateFolderRequest struct {
	Name     *string                 `json:"name,omitempty"`      // rename
	ParentID httputil.OptionalString `json:"parent_id,omitempty"` // move (null = root)
}
