package memory

import (
	"context"
	"encoding/json"

	"docassist/internal/domain/models"
)

type preferencesRepo struct{ s *Store }

func (r *preferencesRepo) Get(ctx context.Context, caller *models.Caller) (*models.UserPreferences, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prefs, ok := r.s.preferences[caller.UserID]
	if !ok {
		return nil, nil
	}
	clone, err := cloneJSONMap(prefs.Preferences)
	if err != nil {
		return nil, err
	}
	prefs.Preferences = clone
	return &prefs, nil
}

func (r *preferencesRepo) Upsert(ctx context.Context, caller *models.Caller, prefs *models.UserPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone, err := cloneJSONMap(prefs.Preferences)
	if err != nil {
		return err
	}

	now := r.s.Now()
	stored, ok := r.s.preferences[caller.UserID]
	if !ok {
		stored = models.UserPreferences{UserID: caller.UserID, CreatedAt: now}
	}
	stored.Preferences = clone
	stored.UpdatedAt = now
	r.s.preferences[caller.UserID] = stored

	prefs.UserID = stored.UserID
	prefs.CreatedAt = stored.CreatedAt
	prefs.UpdatedAt = stored.UpdatedAt
	return nil
}

// cloneJSONMap deep-copies through JSON, the same round trip a JSONB column makes
func cloneJSONMap(in models.JSONMap) (models.JSONMap, error) {
	if in == nil {
		return models.JSONMap{}, nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var out models.JSONMap
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
