package docsystem

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	"docassist/internal/domain/services"
	docsysSvc "docassist/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type noteService struct {
	noteRepo   docsysRepo.NoteRepository
	folderRepo docsysRepo.FolderRepository
	validator  *ResourceValidator
	indexer    services.SearchIndexer
	logger     *slog.Logger
}

// NewNoteService creates a new note service. indexer may be nil.
func NewNoteService(
	noteRepo docsysRepo.NoteRepository,
	folderRepo docsysRepo.FolderRepository,
	validator *ResourceValidator,
	indexer services.SearchIndexer,
	logger *slog.Logger,
) docsysSvc.NoteService {
	return &noteService{
		noteRepo:   noteRepo,
		folderRepo: folderRepo,
		validator:  validator,
		indexer:    indexerOrNoop(indexer),
		logger:     logger,
	}
}

// CreateNote creates a new note
func (s *noteService) CreateNote(ctx context.Context, caller *models.Caller, req *docsysSvc.CreateNoteRequest) (*docsys.Note, error) {
	req.FolderID = NormalizeFolderID(req.FolderID)
	req.Title = strings.TrimSpace(req.Title)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Tags, validation.Each(validation.Required)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.validator.ValidateFolder(ctx, caller, req.FolderID); err != nil {
		return nil, err
	}

	now := time.Now()
	note := &docsys.Note{
		UserID:    caller.UserID,
		FolderID:  req.FolderID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, caller, note); err != nil {
		return nil, err
	}

	note.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), note.FolderID)
	if err := s.indexer.IndexNote(ctx, note); err != nil {
		s.logger.Warn("failed to index note", "id", note.ID, "error", err)
	}

	s.logger.Info("note created", "id", note.ID, "user_id", caller.UserID, "folder_id", note.FolderID)
	return note, nil
}

// GetNote retrieves a note with its folder path
func (s *noteService) GetNote(ctx context.Context, caller *models.Caller, id string) (*docsys.Note, error) {
	note, err := s.noteRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	note.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), note.FolderID)
	return note, nil
}

// ListNotes lists notes with folder paths
func (s *noteService) ListNotes(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Note, error) {
	notes, err := s.noteRepo.List(ctx, caller, filter)
	if err != nil {
		return nil, err
	}

	forest := folderPaths(ctx, caller, s.folderRepo, s.logger)
	for i := range notes {
		notes[i].FolderPath = pathOf(forest, notes[i].FolderID)
	}
	return notes, nil
}

// UpdateNote updates a note
func (s *noteService) UpdateNote(ctx context.Context, caller *models.Caller, id string, req *docsysSvc.UpdateNoteRequest) (*docsys.Note, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.Tags, validation.Each(validation.Required)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	note, err := s.noteRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = req.Tags
	}
	if req.FolderID.Present {
		folderID := NormalizeFolderID(req.FolderID.Value)
		if err := s.validator.ValidateFolder(ctx, caller, folderID); err != nil {
			return nil, err
		}
		note.FolderID = folderID
	}

	note.UpdatedAt = time.Now()
	if err := s.noteRepo.Update(ctx, caller, note); err != nil {
		return nil, err
	}

	note.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), note.FolderID)
	if err := s.indexer.IndexNote(ctx, note); err != nil {
		s.logger.Warn("failed to index note", "id", note.ID, "error", err)
	}

	s.logger.Info("note updated", "id", note.ID)
	return note, nil
}

// DeleteNote deletes a note
func (s *noteService) DeleteNote(ctx context.Context, caller *models.Caller, id string) error {
	if err := s.noteRepo.Delete(ctx, caller, id); err != nil {
		return err
	}

	if err := s.indexer.Remove(ctx, docsys.KindNote, id); err != nil {
		s.logger.Warn("failed to remove note from search index", "id", id, "error", err)
	}

	s.logger.Info("note deleted", "id", id, "user_id", caller.UserID)
	return nil
}
