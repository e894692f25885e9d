package repositories

import (
	"context"

	"docassist/internal/domain/models"
)

// UserPreferencesRepository defines the interface for user preferences data access
type UserPreferencesRepository interface {
	// Get retrieves preferences for the caller
	// Returns nil if no preferences exist (user hasn't set any yet)
	Get(ctx context.Context, caller *models.Caller) (*models.UserPreferences, error)

	// Upsert creates or updates user preferences
	// If preferences don't exist, creates new row
	// If preferences exist, updates the row
	Upsert(ctx context.Context, caller *models.Caller, prefs *models.UserPreferences) error
}
