package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/repositories"
	"docassist/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxDeadlineAdvanceHours caps the client-side reminder window at one week
const maxDeadlineAdvanceHours = 168

// UserPreferencesService implements the UserPreferencesService interface
type UserPreferencesService struct {
	prefsRepo repositories.UserPreferencesRepository
	logger    *slog.Logger
}

// NewUserPreferencesService creates a new user preferences service
func NewUserPreferencesService(
	prefsRepo repositories.UserPreferencesRepository,
	logger *slog.Logger,
) services.UserPreferencesService {
	return &UserPreferencesService{
		prefsRepo: prefsRepo,
		logger:    logger,
	}
}

// getDefaultPreferences returns default preferences with namespaced structure
func (s *UserPreferencesService) getDefaultPreferences(userID string) *models.UserPreferences {
	now := time.Now()
	return &models.UserPreferences{
		UserID: userID,
		Preferences: models.JSONMap{
			"ui": map[string]interface{}{
				"theme": "light",
			},
			"notifications": map[string]interface{}{
				"in_app_alerts":          true,
				"deadline_advance_hours": 24,
			},
			"assistant": map[string]interface{}{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetPreferences retrieves preferences for the caller
func (s *UserPreferencesService) GetPreferences(ctx context.Context, caller *models.Caller) (*models.UserPreferences, error) {
	prefs, err := s.prefsRepo.Get(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	// If no preferences exist yet, return default/empty preferences
	if prefs == nil {
		s.logger.Debug("no preferences found, returning defaults", "user_id", caller.UserID)
		prefs = s.getDefaultPreferences(caller.UserID)
	}

	return prefs, nil
}

// UpdatePreferences updates user preferences (partial or full update)
func (s *UserPreferencesService) UpdatePreferences(ctx context.Context, caller *models.Caller, req *models.UpdatePreferencesRequest) (*models.UserPreferences, error) {
	if err := validateUpdatePreferences(req); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	existing, err := s.prefsRepo.Get(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("get existing preferences: %w", err)
	}

	// If no existing preferences, start with defaults
	if existing == nil {
		existing = s.getDefaultPreferences(caller.UserID)
	}

	// Apply partial updates (only update namespaces that are provided)
	if req.UI != nil {
		if err := existing.SetNamespace("ui", req.UI); err != nil {
			return nil, fmt.Errorf("update ui namespace: %w", err)
		}
	}

	if req.Notifications != nil {
		if err := existing.SetNamespace("notifications", req.Notifications); err != nil {
			return nil, fmt.Errorf("update notifications namespace: %w", err)
		}
	}

	if req.Assistant != nil {
		if err := existing.SetNamespace("assistant", req.Assistant); err != nil {
			return nil, fmt.Errorf("update assistant namespace: %w", err)
		}
	}

	existing.UpdatedAt = time.Now()

	if err := s.prefsRepo.Upsert(ctx, caller, existing); err != nil {
		return nil, fmt.Errorf("upsert preferences: %w", err)
	}

	s.logger.Info("user preferences updated",
		"user_id", caller.UserID,
		"has_ui", req.UI != nil,
		"has_notifications", req.Notifications != nil,
		"has_assistant", req.Assistant != nil,
	)

	return existing, nil
}

func validateUpdatePreferences(req *models.UpdatePreferencesRequest) error {
	if req.UI == nil && req.Notifications == nil && req.Assistant == nil {
		return fmt.Errorf("at least one namespace must be provided")
	}

	if req.UI != nil {
		if err := validation.ValidateStruct(req.UI,
			validation.Field(&req.UI.Theme, validation.In("light", "dark", "auto")),
			validation.Field(&req.UI.DefaultView, validation.In("documents", "notes", "todos")),
		); err != nil {
			return err
		}
	}

	if req.Notifications != nil {
		if err := validation.ValidateStruct(req.Notifications,
			validation.Field(&req.Notifications.DeadlineAdvanceHours, validation.Min(1), validation.Max(maxDeadlineAdvanceHours)),
		); err != nil {
			return err
		}
	}

	return nil
}
