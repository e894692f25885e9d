// Package search keeps a Meilisearch index of documents and notes and answers
// text queries from it, falling back to the relational store when it is down.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/services"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxDocuments = "docassist_documents"
	idxNotes     = "docassist_notes"
)

// record is what gets stored per document or note. Hits are only used for
// their id; rows are re-read from the repository so results are never stale.
type record struct {
	ID        string   `json:"id"`
	UserID    string   `json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags,omitempty"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Meili implements services.SearchIndexer and id lookups via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
	logger  *slog.Logger
}

var _ services.SearchIndexer = (*Meili)(nil)

// NewMeili creates a Meilisearch client and configures indexes.
// An unreachable server is not an error; the health loop picks it up later.
func NewMeili(url, apiKey string, logger *slog.Logger) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
		logger: logger,
	}

	if _, err := client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", "url", url, "error", err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	filterable := []interface{}{"userId"}
	indexes := []struct {
		uid        string
		searchable []string
	}{
		{uid: idxDocuments, searchable: []string{"title", "content"}},
		{uid: idxNotes, searchable: []string{"title", "content", "tags"}},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: "id",
		}); err != nil {
			m.logger.Debug("create index (may already exist)", "index", idx.uid, "error", err)
		}

		index := m.client.Index(idx.uid)
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			m.logger.Warn("update filterable attributes", "index", idx.uid, "error", err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			m.logger.Warn("update searchable attributes", "index", idx.uid, "error", err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				m.logger.Info("meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexDocument adds or replaces a document in the index
func (m *Meili) IndexDocument(_ context.Context, doc *docsystem.Document) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	rec := record{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Title:     doc.Title,
		Content:   doc.Content,
		UpdatedAt: doc.UpdatedAt.Unix(),
	}
	_, err := m.client.Index(idxDocuments).AddDocuments([]record{rec}, nil)
	return err
}

// IndexNote adds or replaces a note in the index
func (m *Meili) IndexNote(_ context.Context, note *docsystem.Note) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	rec := record{
		ID:        note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		UpdatedAt: note.UpdatedAt.Unix(),
	}
	_, err := m.client.Index(idxNotes).AddDocuments([]record{rec}, nil)
	return err
}

// Remove deletes an item from the index. Audio is never indexed.
func (m *Meili) Remove(_ context.Context, kind docsystem.ContentKind, id string) error {
	var uid string
	switch kind {
	case docsystem.KindDocument:
		uid = idxDocuments
	case docsystem.KindNote:
		uid = idxNotes
	default:
		return nil
	}
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	_, err := m.client.Index(uid).DeleteDocument(id, nil)
	return err
}

// hitIDs holds the ids matched per kind, in relevance order
type hitIDs struct {
	Documents []string
	Notes     []string
}

// searchIDs queries both indexes restricted to one owner
func (m *Meili) searchIDs(userID, query string, limit int) (*hitIDs, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	filter := fmt.Sprintf("userId = %q", userID)
	queries := []*meili.SearchRequest{
		{IndexUID: idxDocuments, Query: query, Limit: int64(limit), Filter: filter},
		{IndexUID: idxNotes, Query: query, Limit: int64(limit), Filter: filter},
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{Queries: queries})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	ids := &hitIDs{}
	for _, sr := range resp.Results {
		for _, hit := range sr.Hits {
			id := decodeString(hit, "id")
			if id == "" {
				continue
			}
			switch sr.IndexUID {
			case idxDocuments:
				ids.Documents = append(ids.Documents, id)
			case idxNotes:
				ids.Notes = append(ids.Notes, id)
			}
		}
	}
	return ids, nil
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
