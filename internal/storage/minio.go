// Package storage uploads document and audio files to an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/services"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignExpiry is how long returned download URLs stay valid
const PresignExpiry = 7 * 24 * time.Hour

// Config holds the connection settings for the object store
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store implements services.FileStore on MinIO / S3
type Store struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

var _ services.FileStore = (*Store)(nil)

// New connects to the object store and makes sure the bucket exists
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("created storage bucket", "bucket", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads r under <user_id>/<uuid>-<filename> and returns a presigned URL
func (s *Store) Put(ctx context.Context, caller *models.Caller, filename, contentType string, r io.Reader, size int64) (*services.StoredFile, error) {
	key := ObjectKey(caller.UserID, filename)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignExpiry, nil)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	s.logger.Debug("stored file", "key", key, "size", info.Size)
	return &services.StoredFile{
		Key:         key,
		URL:         u.String(),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

// Delete removes an object owned by the caller
func (s *Store) Delete(ctx context.Context, caller *models.Caller, key string) error {
	if !OwnsKey(caller.UserID, key) {
		return &domain.ForbiddenError{Message: "object belongs to another user"}
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// ObjectKey builds the owner-scoped key for an upload. Directory parts of the
// client-supplied name are discarded.
func ObjectKey(userID, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return userID + "/" + uuid.NewString() + "-" + name
}

// OwnsKey reports whether key sits under the user's prefix
func OwnsKey(userID, key string) bool {
	return userID != "" && strings.HasPrefix(key, userID+"/") && !strings.Contains(key, "..")
}
