// Package memory provides in-memory implementations of every repository.
// It backs the server when no database is configured and is shared by tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	"docassist/internal/domain/repositories"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	llmRepo "docassist/internal/domain/repositories/llm"

	"github.com/google/uuid"
)

// Store holds all rows behind a single mutex. Rows are copied in and out so
// callers never share memory with the store.
type Store struct {
	mu            sync.Mutex
	folders       map[string]docsys.Folder
	documents     map[string]docsys.Document
	notes         map[string]docsys.Note
	audio         map[string]docsys.Audio
	todos         map[string]models.Todo
	notifications map[string]models.Notification
	chat          []llm.ChatMessage
	preferences   map[string]models.UserPreferences

	// Now is the clock used for generated timestamps
	Now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		folders:       make(map[string]docsys.Folder),
		documents:     make(map[string]docsys.Document),
		notes:         make(map[string]docsys.Note),
		audio:         make(map[string]docsys.Audio),
		todos:         make(map[string]models.Todo),
		notifications: make(map[string]models.Notification),
		preferences:   make(map[string]models.UserPreferences),
		Now:           time.Now,
	}
}

func (s *Store) Folders() docsysRepo.FolderRepository { return &folderRepo{s} }
func (s *Store) Documents() docsysRepo.DocumentRepository { return &documentRepo{s} }
func (s *Store) Notes() docsysRepo.NoteRepository { return &noteRepo{s} }
func (s *Store) Audio() docsysRepo.AudioRepository { return &audioRepo{s} }
func (s *Store) Todos() repositories.TodoRepository { return &todoRepo{s} }
func (s *Store) Notifications() repositories.NotificationRepository { return &notificationRepo{s} }
func (s *Store) Chat() llmRepo.ChatRepository { return &chatRepo{s} }
func (s *Store) Preferences() repositories.UserPreferencesRepository { return &preferencesRepo{s} }

func newID() string {
	return uuid.NewString()
}

// stamp returns t, or the store clock when t is zero
func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.Now()
	}
	return t
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func matchesFilter(folderID *string, filter docsys.ContentFilter) bool {
	switch {
	case filter.Unfiled:
		return folderID == nil
	case filter.FolderID != nil:
		return sameFolder(folderID, filter.FolderID)
	default:
		return true
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func sortByCreatedDesc[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(items[i]) > id(items[j])
	})
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
