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

const noteColumns = "id, user_id, folder_id, title, content, tags, created_at, updated_at"

// PostgresNoteRepository implements the NoteRepository interface
type PostgresNoteRepository struct {
	pool   repositories.DBTX
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(config *postgres.RepositoryConfig) docsysRepo.NoteRepository {
	return &PostgresNoteRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new note
func (r *PostgresNoteRepository) Create(ctx context.Context, caller *models.Caller, note *docsys.Note) error {
	if note.Tags == nil {
		note.Tags = []string{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, content, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, created_at, updated_at
	`, r.tables.Notes)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		note.FolderID,
		note.Title,
		note.Content,
		note.Tags,
		note.CreatedAt,
		note.UpdatedAt,
	).Scan(&note.ID, &note.UserID, &note.CreatedAt, &note.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for note: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

// GetByID retrieves a note by ID
func (r *PostgresNoteRepository) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Note, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, noteColumns, r.tables.Notes)

	note, err := scanNote(r.pool.QueryRow(ctx, query, id, caller.UserID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

// Update updates an existing note
func (r *PostgresNoteRepository) Update(ctx context.Context, caller *models.Caller, note *docsys.Note) error {
	if note.Tags == nil {
		note.Tags = []string{}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, content = $3, tags = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, r.tables.Notes)

	result, err := r.pool.Exec(ctx, query,
		note.FolderID,
		note.Title,
		note.Content,
		note.Tags,
		note.UpdatedAt,
		note.ID,
		caller.UserID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for note: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a note
func (r *PostgresNoteRepository) Delete(ctx context.Context, caller *models.Caller, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Notes)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists notes, newest first
func (r *PostgresNoteRepository) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Note, error) {
	where, extra := filterClause(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1%s
		ORDER BY created_at DESC
	`, noteColumns, r.tables.Notes, where)

	args := append([]interface{}{caller.UserID}, extra...)
	return r.queryNotes(ctx, query, args...)
}

// Search matches title, content and tags case-insensitively
func (r *PostgresNoteRepository) Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsys.Note, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		  AND (title ILIKE $2 OR content ILIKE $2 OR array_to_string(tags, ' ') ILIKE $2)
		ORDER BY updated_at DESC
		LIMIT $3
	`, noteColumns, r.tables.Notes)

	return r.queryNotes(ctx, sql, caller.UserID, likePattern(query), limit)
}

// ListRefs returns placement info for every note
func (r *PostgresNoteRepository) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	return listRefs(ctx, r.pool, r.tables.Notes, docsys.KindNote, caller)
}

func (r *PostgresNoteRepository) queryNotes(ctx context.Context, query string, args ...interface{}) ([]docsys.Note, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]docsys.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	return notes, nil
}

func scanNote(row postgres.Scanner) (*docsys.Note, error) {
	var note docsys.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.FolderID,
		&note.Title,
		&note.Content,
		&note.Tags,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
