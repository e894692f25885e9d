package docsystem

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
)

// AudioRepository defines data access operations for audio recordings
type AudioRepository interface {
	ContentPlacement

	Create(ctx context.Context, caller *models.Caller, audio *docsystem.Audio) error
	GetByID(ctx context.Context, caller *models.Caller, id string) (*docsystem.Audio, error)
	Update(ctx context.Context, caller *models.Caller, audio *docsystem.Audio) error
	Delete(ctx context.Context, caller *models.Caller, id string) error
	List(ctx context.Context, caller *models.Caller, filter docsystem.ContentFilter) ([]docsystem.Audio, error)
}
