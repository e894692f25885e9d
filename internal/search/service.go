package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	"docassist/internal/domain/services"
)

const (
	EngineMeili    = "meilisearch"
	EnginePostgres = "postgres"
)

// idSearcher is the part of Meili the service depends on
type idSearcher interface {
	Healthy() bool
	searchIDs(userID, query string, limit int) (*hitIDs, error)
}

// Service answers text queries. Meilisearch is tried first when healthy;
// any failure falls back to the repositories' own substring search.
type Service struct {
	meili     idSearcher
	documents docsysRepo.DocumentRepository
	notes     docsysRepo.NoteRepository
	logger    *slog.Logger
}

var _ services.SearchService = (*Service)(nil)

// NewService creates a search service. m may be nil.
func NewService(m *Meili, documents docsysRepo.DocumentRepository, notes docsysRepo.NoteRepository, logger *slog.Logger) *Service {
	s := &Service{documents: documents, notes: notes, logger: logger}
	if m != nil {
		s.meili = m
	}
	return s
}

// Search returns the caller's documents and notes matching query
func (s *Service) Search(ctx context.Context, caller *models.Caller, query string, limit int) (*services.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &domain.ValidationError{Message: "query is required"}
	}
	switch {
	case limit <= 0:
		limit = config.DefaultSearchLimit
	case limit > config.MaxSearchLimit:
		limit = config.MaxSearchLimit
	}

	if s.meili != nil && s.meili.Healthy() {
		results, err := s.searchMeili(ctx, caller, query, limit)
		if err == nil {
			return results, nil
		}
		s.logger.Warn("meilisearch query failed, falling back to postgres", "error", err)
	}

	docs, err := s.documents.Search(ctx, caller, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	notes, err := s.notes.Search(ctx, caller, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	return &services.SearchResults{
		Query:     query,
		Documents: nonNil(docs),
		Notes:     nonNil(notes),
		Engine:    EnginePostgres,
	}, nil
}

// searchMeili resolves index hits against the repositories. Hits whose row is
// gone (index lagging a delete) are skipped.
func (s *Service) searchMeili(ctx context.Context, caller *models.Caller, query string, limit int) (*services.SearchResults, error) {
	ids, err := s.meili.searchIDs(caller.UserID, query, limit)
	if err != nil {
		return nil, err
	}

	results := &services.SearchResults{
		Query:     query,
		Documents: []docsystem.Document{},
		Notes:     []docsystem.Note{},
		Engine:    EngineMeili,
	}

	for _, id := range ids.Documents {
		doc, err := s.documents.GetByID(ctx, caller, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results.Documents = append(results.Documents, *doc)
	}
	for _, id := range ids.Notes {
		note, err := s.notes.GetByID(ctx, caller, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results.Notes = append(results.Notes, *note)
	}
	return results, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
