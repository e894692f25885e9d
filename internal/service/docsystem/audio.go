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
	docsysSvc "docassist/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type audioService struct {
	audioRepo  docsysRepo.AudioRepository
	folderRepo docsysRepo.FolderRepository
	validator  *ResourceValidator
	logger     *slog.Logger
}

// NewAudioService creates a new audio service
func NewAudioService(
	audioRepo docsysRepo.AudioRepository,
	folderRepo docsysRepo.FolderRepository,
	validator *ResourceValidator,
	logger *slog.Logger,
) docsysSvc.AudioService {
	return &audioService{
		audioRepo:  audioRepo,
		folderRepo: folderRepo,
		validator:  validator,
		logger:     logger,
	}
}

// CreateAudio registers an uploaded recording
func (s *audioService) CreateAudio(ctx context.Context, caller *models.Caller, req *docsysSvc.CreateAudioRequest) (*docsys.Audio, error) {
	req.FolderID = NormalizeFolderID(req.FolderID)
	req.Title = strings.TrimSpace(req.Title)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.FileURL, validation.Required),
		validation.Field(&req.DurationSeconds, validation.Min(0)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.validator.ValidateFolder(ctx, caller, req.FolderID); err != nil {
		return nil, err
	}

	now := time.Now()
	audio := &docsys.Audio{
		UserID:          caller.UserID,
		FolderID:        req.FolderID,
		Title:           req.Title,
		FileURL:         req.FileURL,
		DurationSeconds: req.DurationSeconds,
		Transcription:   req.Transcription,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.audioRepo.Create(ctx, caller, audio); err != nil {
		return nil, err
	}

	audio.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), audio.FolderID)

	s.logger.Info("audio created", "id", audio.ID, "user_id", caller.UserID, "folder_id", audio.FolderID)
	return audio, nil
}

// GetAudio retrieves a recording with its folder path
func (s *audioService) GetAudio(ctx context.Context, caller *models.Caller, id string) (*docsys.Audio, error) {
	audio, err := s.audioRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	audio.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), audio.FolderID)
	return audio, nil
}

// ListAudio lists recordings with folder paths
func (s *audioService) ListAudio(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Audio, error) {
	recordings, err := s.audioRepo.List(ctx, caller, filter)
	if err != nil {
		return nil, err
	}

	forest := folderPaths(ctx, caller, s.folderRepo, s.logger)
	for i := range recordings {
		recordings[i].FolderPath = pathOf(forest, recordings[i].FolderID)
	}
	return recordings, nil
}

// UpdateAudio updates title, transcription or folder placement
func (s *audioService) UpdateAudio(ctx context.Context, caller *models.Caller, id string, req *docsysSvc.UpdateAudioRequest) (*docsys.Audio, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	audio, err := s.audioRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		audio.Title = *req.Title
	}
	if req.Transcription != nil {
		audio.Transcription = req.Transcription
	}
	if req.FolderID.Present {
		folderID := NormalizeFolderID(req.FolderID.Value)
		if err := s.validator.ValidateFolder(ctx, caller, folderID); err != nil {
			return nil, err
		}
		audio.FolderID = folderID
	}

	audio.UpdatedAt = time.Now()
	if err := s.audioRepo.Update(ctx, caller, audio); err != nil {
		return nil, err
	}

	audio.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), audio.FolderID)

	s.logger.Info("audio updated", "id", audio.ID)
	return audio, nil
}

// DeleteAudio deletes a recording row. The stored file is left in object storage.
func (s *audioService) DeleteAudio(ctx context.Context, caller *models.Caller, id string) error {
	if err := s.audioRepo.Delete(ctx, caller, id); err != nil {
		return err
	}

	s.logger.Info("audio deleted", "id", id, "user_id", caller.UserID)
	return nil
}
