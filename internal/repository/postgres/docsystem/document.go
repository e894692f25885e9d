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

const documentColumns = `id, user_id, folder_id, title, content, file_url, file_type, file_size,
	document_type, created_at, updated_at`

// PostgresDocumentRepository implements the DocumentRepository interface
type PostgresDocumentRepository struct {
	pool   repositories.DBTX
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *postgres.RepositoryConfig) docsysRepo.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new document
func (r *PostgresDocumentRepository) Create(ctx context.Context, caller *models.Caller, doc *docsys.Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, folder_id, title, content, file_url, file_type, file_size, document_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, user_id, created_at, updated_at
	`, r.tables.Documents)

	err := r.pool.QueryRow(ctx, query,
		caller.UserID,
		doc.FolderID,
		doc.Title,
		doc.Content,
		doc.FileURL,
		doc.FileType,
		doc.FileSize,
		doc.DocumentType,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID, &doc.UserID, &doc.CreatedAt, &doc.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for document: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (r *PostgresDocumentRepository) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Document, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, documentColumns, r.tables.Documents)

	doc, err := scanDocument(r.pool.QueryRow(ctx, query, id, caller.UserID))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return doc, nil
}

// Update updates an existing document
func (r *PostgresDocumentRepository) Update(ctx context.Context, caller *models.Caller, doc *docsys.Document) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, title = $2, content = $3, document_type = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`, r.tables.Documents)

	result, err := r.pool.Exec(ctx, query,
		doc.FolderID,
		doc.Title,
		doc.Content,
		doc.DocumentType,
		doc.UpdatedAt,
		doc.ID,
		caller.UserID,
	)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder for document: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("update document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete deletes a document
func (r *PostgresDocumentRepository) Delete(ctx context.Context, caller *models.Caller, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Documents)

	result, err := r.pool.Exec(ctx, query, id, caller.UserID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// List lists documents, newest first
func (r *PostgresDocumentRepository) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Document, error) {
	where, extra := filterClause(filter)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1%s
		ORDER BY created_at DESC
	`, documentColumns, r.tables.Documents, where)

	args := append([]interface{}{caller.UserID}, extra...)
	return r.queryDocuments(ctx, query, args...)
}

// Search matches title and content case-insensitively
func (r *PostgresDocumentRepository) Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsys.Document, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
		ORDER BY updated_at DESC
		LIMIT $3
	`, documentColumns, r.tables.Documents)

	return r.queryDocuments(ctx, sql, caller.UserID, likePattern(query), limit)
}

// ListRefs returns placement info for every document
func (r *PostgresDocumentRepository) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	return listRefs(ctx, r.pool, r.tables.Documents, docsys.KindDocument, caller)
}

func (r *PostgresDocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]docsys.Document, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]docsys.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

func scanDocument(row postgres.Scanner) (*docsys.Document, error) {
	var doc docsys.Document
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FolderID,
		&doc.Title,
		&doc.Content,
		&doc.FileURL,
		&doc.FileType,
		&doc.FileSize,
		&doc.DocumentType,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
