package models

import (
	"encoding/json"
	"time"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// UserPreferences stores per-user settings in a single namespaced JSONB column
type UserPreferences struct {
	UserID      string    `json:"user_id" db:"user_id"`
	Preferences JSONMap   `json:"preferences" db:"preferences"` // {ui, notifications, assistant}
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// UIPreferences represents the ui namespace in preferences
type UIPreferences struct {
	Theme       string `json:"theme"` // "light", "dark", "auto"
	CompactMode *bool  `json:"compact_mode"`
	DefaultView string `json:"default_view,omitempty"` // "documents", "notes", "todos"
}

// NotificationPreferences represents the notifications namespace.
// DeadlineAdvanceHours drives client-side reminders only; the server sweep
// uses its own configured window.
type NotificationPreferences struct {
	InAppAlerts          *bool `json:"in_app_alerts"`
	DeadlineAdvanceHours *int  `json:"deadline_advance_hours"`
}

// AssistantPreferences represents the assistant namespace
type AssistantPreferences struct {
	Model           *string `json:"model"`
	AutoDetectTodos *bool   `json:"auto_detect_todos"`
	AutoOrganize    *bool   `json:"auto_organize"`
}

// UpdatePreferencesRequest supports partial updates: only non-nil namespaces change
type UpdatePreferencesRequest struct {
	UI            *UIPreferences           `json:"ui"`
	Notifications *NotificationPreferences `json:"notifications"`
	Assistant     *AssistantPreferences    `json:"assistant"`
}

// GetNotifications extracts the notifications namespace from preferences
func (up *UserPreferences) GetNotifications() (*NotificationPreferences, error) {
	var prefs NotificationPreferences
	if err := up.decodeNamespace("notifications", &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// GetUI extracts the ui namespace from preferences
func (up *UserPreferences) GetUI() (*UIPreferences, error) {
	ui := UIPreferences{Theme: "light"}
	if err := up.decodeNamespace("ui", &ui); err != nil {
		return nil, err
	}
	return &ui, nil
}

// SetNamespace stores v (marshalled to a map) under the given namespace
func (up *UserPreferences) SetNamespace(namespace string, v interface{}) error {
	if up.Preferences == nil {
		up.Preferences = JSONMap{}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	up.Preferences[namespace] = m
	return nil
}

// decodeNamespace re-marshals a namespace into dest; a missing namespace leaves dest untouched
func (up *UserPreferences) decodeNamespace(namespace string, dest interface{}) error {
	if up.Preferences == nil {
		return nil
	}
	raw, ok := up.Preferences[namespace]
	if !ok || raw == nil {
		return nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
