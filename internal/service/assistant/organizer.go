package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	docsysSvc "docassist/internal/domain/services/docsystem"
	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/httputil"
)

const opOrganize = "organize_document"

type organizerService struct {
	documents  docsysSvc.DocumentService
	folders    docsysSvc.FolderService
	classifier llmSvc.DocumentClassifier
	logger     *slog.Logger
}

// NewOrganizerService creates the classify-and-file service
func NewOrganizerService(
	documents docsysSvc.DocumentService,
	folders docsysSvc.FolderService,
	classifier llmSvc.DocumentClassifier,
	logger *slog.Logger,
) llmSvc.OrganizerService {
	return &organizerService{
		documents:  documents,
		folders:    folders,
		classifier: classifier,
		logger:     logger,
	}
}

// Classify returns the model's classification without changing anything
func (s *organizerService) Classify(ctx context.Context, caller *models.Caller, documentID string) (*llm.Classification, error) {
	doc, err := s.documents.GetDocument(ctx, caller, documentID)
	if err != nil {
		return nil, err
	}
	return s.classify(ctx, caller, doc)
}

// Organize classifies the document, ensures the recommended folder and its
// subfolders exist, then moves the document there and records its type.
// Steps are not atomic: folders created before a later failure stay.
func (s *organizerService) Organize(ctx context.Context, caller *models.Caller, documentID string) (*llmSvc.OrganizeResult, error) {
	doc, err := s.documents.GetDocument(ctx, caller, documentID)
	if err != nil {
		return nil, err
	}

	classification, err := s.classify(ctx, caller, doc)
	if err != nil {
		return nil, err
	}

	target := joinPath(classification.FolderRecommendation.ParentPath, classification.FolderRecommendation.Name)
	folder, err := s.ensure(ctx, caller, nil, target)
	if err != nil {
		return nil, err
	}

	subfolders := make([]docsys.Folder, 0, len(classification.FolderRecommendation.Subfolders))
	for _, name := range classification.FolderRecommendation.Subfolders {
		sub, err := s.ensure(ctx, caller, &folder.ID, name)
		if err != nil {
			return nil, err
		}
		subfolders = append(subfolders, *sub)
	}

	docType := string(classification.DocumentType)
	updated, err := s.documents.UpdateDocument(ctx, caller, doc.ID, &docsysSvc.UpdateDocumentRequest{
		FolderID:     httputil.OptionalString{Present: true, Value: &folder.ID},
		DocumentType: &docType,
	})
	if err != nil {
		return nil, fmt.Errorf("move document: %w", err)
	}

	s.logger.Info("document organized",
		"document_id", doc.ID,
		"user_id", caller.UserID,
		"folder_id", folder.ID,
		"path", folder.Path,
		"document_type", docType,
		"subfolders", len(subfolders),
	)

	return &llmSvc.OrganizeResult{
		Document:       updated,
		Folder:         folder,
		Subfolders:     subfolders,
		Classification: classification,
	}, nil
}

func (s *organizerService) classify(ctx context.Context, caller *models.Caller, doc *docsys.Document) (*llm.Classification, error) {
	folders, err := s.folders.ListFolders(ctx, caller)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(folders))
	for i, f := range folders {
		paths[i] = f.Path
	}
	return s.classifier.Classify(ctx, doc, paths)
}

// ensure creates the recommended path below parentID. A path the folder rules reject
// came from the model, so it is reported as malformed output rather than a client error.
func (s *organizerService) ensure(ctx context.Context, caller *models.Caller, parentID *string, path string) (*docsys.Folder, error) {
	folder, err := s.folders.EnsurePath(ctx, caller, parentID, path)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return nil, &domain.MalformedResponseError{
				Operation: opOrganize,
				Reason:    fmt.Sprintf("unusable folder path %q: %s", path, validationErr.Message),
				Raw:       path,
			}
		}
		return nil, fmt.Errorf("ensure folder %q: %w", path, err)
	}
	return folder, nil
}

func joinPath(parent, name string) string {
	parent = strings.Trim(parent, docsys.PathSeparator)
	if parent == "" {
		return name
	}
	return parent + docsys.PathSeparator + name
}
