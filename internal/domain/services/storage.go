package services

import (
	"context"
	"io"

	"docassist/internal/domain/models"
)

// FileStore keeps uploaded files under an owner-scoped key prefix
type FileStore interface {
	// Put stores the file and returns where it can be fetched from
	Put(ctx context.Context, caller *models.Caller, filename, contentType string, r io.Reader, size int64) (*StoredFile, error)

	// Delete removes a stored object. Keys outside the caller's prefix are rejected.
	Delete(ctx context.Context, caller *models.Caller, key string) error
}

// StoredFile describes an uploaded object
type StoredFile struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}
