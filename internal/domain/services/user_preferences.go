package services

import (
	"context"

	"docassist/internal/domain/models"
)

// UserPreferencesService defines the business logic for user preferences operations
type UserPreferencesService interface {
	// GetPreferences retrieves preferences for the caller
	// Returns default/empty preferences if none exist yet
	GetPreferences(ctx context.Context, caller *models.Caller) (*models.UserPreferences, error)

	// UpdatePreferences updates user preferences (partial or full update)
	// Creates new preferences if they don't exist
	UpdatePreferences(ctx context.Context, caller *models.Caller, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error)
}
