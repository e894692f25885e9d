package docsystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	docsysSvc "docassist/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderService struct {
	folderRepo docsysRepo.FolderRepository
	docRepo    docsysRepo.DocumentRepository
	noteRepo   docsysRepo.NoteRepository
	audioRepo  docsysRepo.AudioRepository
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo docsysRepo.FolderRepository,
	docRepo docsysRepo.DocumentRepository,
	noteRepo docsysRepo.NoteRepository,
	audioRepo docsysRepo.AudioRepository,
	logger *slog.Logger,
) docsysSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		docRepo:    docRepo,
		noteRepo:   noteRepo,
		audioRepo:  audioRepo,
		logger:     logger,
	}
}

// snapshot loads the caller's folders into an immutable forest
func (s *folderService) snapshot(ctx context.Context, caller *models.Caller) (*Forest, error) {
	folders, err := s.folderRepo.ListAll(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	return BuildForest(folders), nil
}

// contentRefs loads placement records of all three content kinds
func (s *folderService) contentRefs(ctx context.Context, caller *models.Caller) ([][]docsys.ContentRef, error) {
	docs, err := s.docRepo.ListRefs(ctx, caller)
	if err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.ListRefs(ctx, caller)
	if err != nil {
		return nil, err
	}
	audio, err := s.audioRepo.ListRefs(ctx, caller)
	if err != nil {
		return nil, err
	}
	return [][]docsys.ContentRef{docs, notes, audio}, nil
}

// withPath fills folder.Path from a fresh snapshot; failures only degrade the path
func (s *folderService) withPath(ctx context.Context, caller *models.Caller, folder *docsys.Folder) *docsys.Folder {
	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		s.logger.Warn("failed to compute path", "folder_id", folder.ID, "error", err)
		folder.Path = folder.Name
		return folder
	}
	folder.Path = forest.ResolvePath(&folder.ID)
	return folder
}

// CreateFolder creates a new folder
// Supports path notation:
//   - "name" → create folder with given name under parent_id
//   - "a/b/c" → create missing intermediate folders (a, b), then c, under parent_id
//   - "/a/b/c" → same, starting from root (ignore parent_id)
//
// Intermediate folders are created one call at a time. If a later step fails the
// folders already created stay and the error is returned.
func (s *folderService) CreateFolder(ctx context.Context, caller *models.Caller, req *docsysSvc.CreateFolderRequest) (*docsys.Folder, error) {
	req.ParentID = NormalizeFolderID(req.ParentID)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, config.MaxFolderPathLength)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parsed, err := ParsePath(req.Name, config.MaxFolderNameLength)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parentID := ResolveParentID(parsed.IsAbsolute, req.ParentID)
	if err := CheckID("parent_id", parentID); err != nil {
		return nil, err
	}
	if parentID != nil {
		if _, err := s.folderRepo.GetByID(ctx, caller, *parentID); err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	for _, segment := range parsed.ParentPath {
		intermediate, err := s.folderRepo.CreateIfNotExists(ctx, caller, parentID, segment)
		if err != nil {
			return nil, fmt.Errorf("create intermediate folder %q: %w", segment, err)
		}
		parentID = &intermediate.ID
	}

	now := time.Now()
	folder := &docsys.Folder{
		UserID:    caller.UserID,
		ParentID:  parentID,
		Name:      parsed.FinalName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.folderRepo.Create(ctx, caller, folder); err != nil {
		return nil, err
	}

	s.withPath(ctx, caller, folder)

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", caller.UserID,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)

	return folder, nil
}

// GetFolder retrieves a folder with its computed path
func (s *folderService) GetFolder(ctx context.Context, caller *models.Caller, id string) (*docsys.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.withPath(ctx, caller, folder), nil
}

// ListFolders returns every folder with its path, sorted by name
func (s *folderService) ListFolders(ctx context.Context, caller *models.Caller) ([]docsys.Folder, error) {
	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		return nil, err
	}
	return forest.Folders(), nil
}

// GetTree builds the nested folder forest with content counts
func (s *folderService) GetTree(ctx context.Context, caller *models.Caller) (*docsys.FolderTree, error) {
	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		return nil, err
	}

	refs, err := s.contentRefs(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("load content placement: %w", err)
	}
	byFolder, unfiled := CountAll(refs...)

	tree := &docsys.FolderTree{
		Folders:    forest.Tree(byFolder),
		Unfiled:    unfiled,
		TotalCount: forest.Len(),
	}

	s.logger.Debug("folder tree built",
		"user_id", caller.UserID,
		"folder_count", tree.TotalCount,
		"unfiled_count", unfiled.Total(),
	)

	return tree, nil
}

// UpdateFolder renames and/or moves a folder
func (s *folderService) UpdateFolder(ctx context.Context, caller *models.Caller, id string, req *docsysSvc.UpdateFolderRequest) (*docsys.Folder, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	folder, err := s.folderRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		folder.Name = *req.Name
	}

	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		return nil, err
	}

	// Tri-state: only move if the field was present in the request
	if req.ParentID.Present {
		newParentID := NormalizeFolderID(req.ParentID.Value)
		if err := CheckID("parent_id", newParentID); err != nil {
			return nil, err
		}
		if newParentID != nil {
			if _, err := s.folderRepo.GetByID(ctx, caller, *newParentID); err != nil {
				return nil, fmt.Errorf("parent folder: %w", err)
			}
		}

		if err := forest.CheckMove(folder.ID, newParentID); err != nil {
			s.logger.Debug("folder move rejected", "folder_id", folder.ID, "new_parent_id", newParentID, "error", err)
			return nil, err
		}

		folder.ParentID = newParentID
	}

	for _, sibling := range forest.Children(folder.ParentID) {
		if sibling.ID != folder.ID && sibling.Name == folder.Name {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}

	folder.UpdatedAt = time.Now()
	if err := s.folderRepo.Update(ctx, caller, folder); err != nil {
		return nil, err
	}

	s.withPath(ctx, caller, folder)

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)

	return folder, nil
}

// DeleteFolder deletes a folder that has no child folders and no content.
// The check and the delete are separate calls; nothing is rolled back if the delete fails.
func (s *folderService) DeleteFolder(ctx context.Context, caller *models.Caller, id string) error {
	folder, err := s.folderRepo.GetByID(ctx, caller, id)
	if err != nil {
		return err
	}

	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		return err
	}
	refs, err := s.contentRefs(ctx, caller)
	if err != nil {
		return fmt.Errorf("load content placement: %w", err)
	}

	if err := forest.CheckDelete(folder.ID, CountContents(folder.ID, refs...)); err != nil {
		var notEmpty *domain.NotEmptyError
		if errors.As(err, &notEmpty) {
			s.logger.Debug("folder delete rejected",
				"folder_id", folder.ID,
				"child_folders", notEmpty.ChildFolders,
				"documents", notEmpty.Documents,
				"notes", notEmpty.Notes,
				"audio", notEmpty.Audio,
			)
		}
		return err
	}

	if err := s.folderRepo.Delete(ctx, caller, folder.ID); err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"user_id", caller.UserID,
	)

	return nil
}

// EnsurePath returns the folder at path, creating each missing segment from the root down
func (s *folderService) EnsurePath(ctx context.Context, caller *models.Caller, parentID *string, path string) (*docsys.Folder, error) {
	parsed, err := ParsePath(path, config.MaxFolderNameLength)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	parentID = ResolveParentID(parsed.IsAbsolute, parentID)
	var folder *docsys.Folder
	for _, segment := range parsed.Segments {
		folder, err = s.folderRepo.CreateIfNotExists(ctx, caller, parentID, segment)
		if err != nil {
			return nil, fmt.Errorf("ensure folder %q: %w", segment, err)
		}
		parentID = &folder.ID
	}

	return s.withPath(ctx, caller, folder), nil
}

// ResolvePath returns the display path for a folder id, or "No folder"
func (s *folderService) ResolvePath(ctx context.Context, caller *models.Caller, folderID *string) (string, error) {
	if folderID == nil {
		return docsys.NoFolderPath, nil
	}
	forest, err := s.snapshot(ctx, caller)
	if err != nil {
		return "", err
	}
	return forest.ResolvePath(folderID), nil
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *docsysSvc.UpdateFolderRequest) error {
	if req.Name == nil && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	if req.Name == nil {
		return nil
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.RuneLength(1, config.MaxFolderNameLength),
			validation.By(noSlash),
		),
	)
}

func noSlash(value interface{}) error {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case *string:
		if v != nil {
			name = *v
		}
	}
	if strings.Contains(name, docsys.PathSeparator) {
		return errors.New("folder name cannot contain slashes")
	}
	return nil
}
