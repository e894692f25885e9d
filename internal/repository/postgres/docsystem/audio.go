package docsystem

import (
	"context"
	"fmt"
	"log/slog"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/repositories"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	"docassist/internal/repository/postgres"
)

const audioColumns = "id, user_id, folder_id, title, file_url, duration_seconds, transcription, created_at, updated_at"

// PostgresAudioRepository implements the AudioRepository interface
type PostgresAudioRepository struct {
	pool   repositories.DBTX
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewAudioRepository creates a new audio repository
func NewAudioRepository(config *postgres.RepositoryConfig) docsysRepo.AudioRepository {
	return &PostgresAudioRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new audio recording
func (r *PostgresAudioRepository) Create(ctx context.Context, caller *models.Caller, audio *docsys.Audio) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, file_url, duration_seconds, transcription, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, created_at, updated_at
	`, r.tables.Audio)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		audio.FolderID,
		audio.Title,
		audio.FileURL,
		audio.DurationSeconds,
		audio.Transcription,
		audio.CreatedAt,
		audio.UpdatedAt,
	).Scan(&audio.ID, &audio.UserID, &audio.CreatedAt, &audio.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for audio: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create audio: %w", err)
	}

	return nil
}

// GetByID retrieves an audio recording by ID
func (r *PostgresAudioRepository) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Audio, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, audioColumns, r.tables.Audio)

	audio, err := scanAudio(r.pool.QueryRow(ctx, query, id, caller.UserID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("audio %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get audio: %w", err)
	}

	return audio, nil
}

// Update updates title, transcription and folder
func (r *PostgresAudioRepository) Update(ctx context.Context, caller *models.Caller, audio *docsys.Audio) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, transcription = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`, r.tables.Audio)

	result, err := r.pool.Exec(ctx, query,
		audio.FolderID,
		audio.Title,
		audio.Transcription,
		audio.UpdatedAt,
		audio.ID,
		caller.UserID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for audio: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update audio: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("audio %s: %w", audio.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes an audio recording
func (r *PostgresAudioRepository) Delete(ctx context.Context, caller *models.Caller, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Audio)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("delete audio: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("audio %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists audio recordings, newest first
func (r *PostgresAudioRepository) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Audio, error) {
	where, extra := filterClause(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1%s
		ORDER BY created_at DESC
	`, audioColumns, r.tables.Audio, where)

	rows, err := r.pool.Query(ctx, query, append([]interface{}{caller.UserID}, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("list audio: %w", err)
	}
	defer rows.Close()

	recordings := make([]docsys.Audio, 0)
	for rows.Next() {
		audio, err := scanAudio(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audio: %w", err)
		}
		recordings = append(recordings, *audio)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audio: %w", err)
	}

	return recordings, nil
}

// ListRefs returns placement info for every recording
func (r *PostgresAudioRepository) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	return listRefs(ctx, r.pool, r.tables.Audio, docsys.KindAudio, caller)
}

func scanAudio(row postgres.Scanner) (*docsys.Audio, error) {
	var audio docsys.Audio
	err := row.Scan(
		&audio.ID,
		&audio.UserID,
		&audio.FolderID,
		&audio.Title,
		&audio.FileURL,
		&audio.DurationSeconds,
		&audio.Transcription,
		&audio.CreatedAt,
		&audio.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &audio, nil
}
