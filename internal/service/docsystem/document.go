package docsystem

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	"docassist/internal/domain/services"
	docsysSvc "docassist/internal/domain/services/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// documentService implements the DocumentService interface
type documentService struct {
	docRepo    docsysRepo.DocumentRepository
	folderRepo docsysRepo.FolderRepository
	validator  *ResourceValidator
	indexer    services.SearchIndexer
	logger     *slog.Logger
}

// NewDocumentService creates a new document service. indexer may be nil.
func NewDocumentService(
	docRepo docsysRepo.DocumentRepository,
	folderRepo docsysRepo.FolderRepository,
	validator *ResourceValidator,
	indexer services.SearchIndexer,
	logger *slog.Logger,
) docsysSvc.DocumentService {
	return &documentService{
		docRepo:    docRepo,
		folderRepo: folderRepo,
		validator:  validator,
		indexer:    indexerOrNoop(indexer),
		logger:     logger,
	}
}

// CreateDocument creates a new document, optionally inside a folder
func (s *documentService) CreateDocument(ctx context.Context, caller *models.Caller, req *docsysSvc.CreateDocumentRequest) (*docsys.Document, error) {
	req.FolderID = NormalizeFolderID(req.FolderID)
	req.Title = strings.TrimSpace(req.Title)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.FileSize, validation.Min(int64(0))),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.validator.ValidateFolder(ctx, caller, req.FolderID); err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &docsys.Document{
		UserID:    caller.UserID,
		FolderID:  req.FolderID,
		Title:     req.Title,
		Content:   req.Content,
		FileURL:   req.FileURL,
		FileType:  req.FileType,
		FileSize:  req.FileSize,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, caller, doc); err != nil {
		return nil, err
	}

	doc.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), doc.FolderID)
	s.index(ctx, doc)

	s.logger.Info("document created",
		"id", doc.ID,
		"title", doc.Title,
		"user_id", caller.UserID,
		"folder_id", doc.FolderID,
	)

	return doc, nil
}

// GetDocument retrieves a document with its folder path
func (s *documentService) GetDocument(ctx context.Context, caller *models.Caller, id string) (*docsys.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	doc.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), doc.FolderID)
	return doc, nil
}

// ListDocuments lists documents with folder paths
func (s *documentService) ListDocuments(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Document, error) {
	docs, err := s.docRepo.List(ctx, caller, filter)
	if err != nil {
		return nil, err
	}

	forest := folderPaths(ctx, caller, s.folderRepo, s.logger)
	for i := range docs {
		docs[i].FolderPath = pathOf(forest, docs[i].FolderID)
	}
	return docs, nil
}

// UpdateDocument updates title, content, folder placement or document type
func (s *documentService) UpdateDocument(ctx context.Context, caller *models.Caller, id string, req *docsysSvc.UpdateDocumentRequest) (*docsys.Document, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.RuneLength(1, config.MaxTitleLength)),
		validation.Field(&req.DocumentType, validation.NilOrNotEmpty, validation.In(documentTypeStrings()...)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	doc, err := s.docRepo.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Content != nil {
		doc.Content = *req.Content
	}
	if req.DocumentType != nil {
		doc.DocumentType = req.DocumentType
	}
	if req.FolderID.Present {
		folderID := NormalizeFolderID(req.FolderID.Value)
		if err := s.validator.ValidateFolder(ctx, caller, folderID); err != nil {
			return nil, err
		}
		doc.FolderID = folderID
	}

	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, caller, doc); err != nil {
		return nil, err
	}

	doc.FolderPath = pathOf(folderPaths(ctx, caller, s.folderRepo, s.logger), doc.FolderID)
	s.index(ctx, doc)

	s.logger.Info("document updated", "id", doc.ID, "folder_id", doc.FolderID)
	return doc, nil
}

// DeleteDocument deletes a document
func (s *documentService) DeleteDocument(ctx context.Context, caller *models.Caller, id string) error {
	if err := s.docRepo.Delete(ctx, caller, id); err != nil {
		return err
	}

	if err := s.indexer.Remove(ctx, docsys.KindDocument, id); err != nil {
		s.logger.Warn("failed to remove document from search index", "id", id, "error", err)
	}

	s.logger.Info("document deleted", "id", id, "user_id", caller.UserID)
	return nil
}

func (s *documentService) index(ctx context.Context, doc *docsys.Document) {
	if err := s.indexer.IndexDocument(ctx, doc); err != nil {
		s.logger.Warn("failed to index document", "id", doc.ID, "error", err)
	}
}

func documentTypeStrings() []interface{} {
	out := make([]interface{}, 0, len(llm.DocumentTypes))
	for _, t := range llm.DocumentTypes {
		out = append(out, string(t.(llm.DocumentType)))
	}
	return out
}
