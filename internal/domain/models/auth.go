package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	Role         string                 `json:"role"` // "authenticated" or "anon"
	SessionID    string                 `json:"session_id"`
	IsAnonymous  bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// Caller builds the authenticated caller carried through services and repositories.
func (c *SupabaseClaims) Caller() *Caller {
	return &Caller{
		UserID: c.Subject,
		Email:  c.Email,
	}
}

// Caller is the authenticated owner of a request. Every repository query is
// scoped by Caller.UserID; services never accept a bare user id from clients.
type Caller struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Valid reports whether the caller carries an owner identity.
func (c *Caller) Valid() bool {
	return c != nil && c.UserID != ""
}
