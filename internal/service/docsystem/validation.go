package docsystem

import (
	"context"
	"fmt"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsysRepo "docassist/internal/domain/repositories/docsystem"

	"github.com/google/uuid"
)

// ResourceValidator checks that referenced folders exist and belong to the caller
// before content is placed in them
type ResourceValidator struct {
	folderRepo docsysRepo.FolderRepository
}

// NewResourceValidator creates a new resource validator
func NewResourceValidator(folderRepo docsysRepo.FolderRepository) *ResourceValidator {
	return &ResourceValidator{folderRepo: folderRepo}
}

// NormalizeFolderID maps an empty string to nil (no folder)
func NormalizeFolderID(folderID *string) *string {
	if folderID != nil && *folderID == "" {
		return nil
	}
	return folderID
}

// CheckID rejects a non-nil id that is not a UUID
func CheckID(field string, id *string) error {
	if id == nil {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return &domain.ValidationError{Message: "invalid " + field + " format"}
	}
	return nil
}

// ValidateFolder ensures a folder exists for the caller.
// Returns nil for a nil folder id (unfiled is always valid).
// Returns domain.ErrNotFound if the folder doesn't exist or isn't the caller's.
func (v *ResourceValidator) ValidateFolder(ctx context.Context, caller *models.Caller, folderID *string) error {
	if folderID == nil {
		return nil
	}
	if err := CheckID("folder_id", folderID); err != nil {
		return err
	}

	if _, err := v.folderRepo.GetByID(ctx, caller, *folderID); err != nil {
		return fmt.Errorf("invalid folder: %w", err)
	}
	return nil
}
