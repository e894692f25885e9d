package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
)

type documentRepo struct{ s *Store }

func (r *documentRepo) Create(ctx context.Context, caller *models.Caller, doc *docsys.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc.ID = newID()
	doc.UserID = caller.UserID
	doc.CreatedAt = r.s.stamp(doc.CreatedAt)
	doc.UpdatedAt = r.s.stamp(doc.UpdatedAt)
	stored := *doc
	stored.FolderPath = ""
	r.s.documents[doc.ID] = stored
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.documents[id]
	if !ok || doc.UserID != caller.UserID {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

func (r *documentRepo) Update(ctx context.Context, caller *models.Caller, doc *docsys.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.documents[doc.ID]
	if !ok || existing.UserID != caller.UserID {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrNotFound)
	}
	existing.Title = doc.Title
	existing.Content = doc.Content
	existing.FolderID = doc.FolderID
	existing.DocumentType = doc.DocumentType
	existing.UpdatedAt = r.s.stamp(doc.UpdatedAt)
	r.s.documents[doc.ID] = existing
	doc.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.documents[id]
	if !ok || doc.UserID != caller.UserID {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.documents, id)
	return nil
}

func (r *documentRepo) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Document, 0)
	for _, doc := range r.s.documents {
		if doc.UserID == caller.UserID && matchesFilter(doc.FolderID, filter) {
			out = append(out, doc)
		}
	}
	sortByCreatedDesc(out, func(d docsys.Document) time.Time { return d.CreatedAt }, func(d docsys.Document) string { return d.ID })
	return out, nil
}

func (r *documentRepo) Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsys.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Document, 0)
	for _, doc := range r.s.documents {
		if doc.UserID == caller.UserID && (containsFold(doc.Title, query) || containsFold(doc.Content, query)) {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *documentRepo) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	refs := make([]docsys.ContentRef, 0)
	for _, doc := range r.s.documents {
		if doc.UserID == caller.UserID {
			refs = append(refs, docsys.ContentRef{ID: doc.ID, Kind: docsys.KindDocument, FolderID: doc.FolderID})
		}
	}
	return refs, nil
}

type noteRepo struct{ s *Store }

func (r *noteRepo) Create(ctx context.Context, caller *models.Caller, note *docsys.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	note.ID = newID()
	note.UserID = caller.UserID
	note.CreatedAt = r.s.stamp(note.CreatedAt)
	note.UpdatedAt = r.s.stamp(note.UpdatedAt)
	stored := *note
	stored.FolderPath = ""
	stored.Tags = copyStrings(note.Tags)
	r.s.notes[note.ID] = stored
	return nil
}

func (r *noteRepo) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	note, ok := r.s.notes[id]
	if !ok || note.UserID != caller.UserID {
		return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	note.Tags = copyStrings(note.Tags)
	return &note, nil
}

func (r *noteRepo) Update(ctx context.Context, caller *models.Caller, note *docsys.Note) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.notes[note.ID]
	if !ok || existing.UserID != caller.UserID {
		return fmt.Errorf("note %s: %w", note.ID, domain.ErrNotFound)
	}
	existing.Title = note.Title
	existing.Content = note.Content
	existing.Tags = copyStrings(note.Tags)
	existing.FolderID = note.FolderID
	existing.UpdatedAt = r.s.stamp(note.UpdatedAt)
	r.s.notes[note.ID] = existing
	note.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *noteRepo) Delete(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	note, ok := r.s.notes[id]
	if !ok || note.UserID != caller.UserID {
		return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.notes, id)
	return nil
}

func (r *noteRepo) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Note, 0)
	for _, note := range r.s.notes {
		if note.UserID == caller.UserID && matchesFilter(note.FolderID, filter) {
			note.Tags = copyStrings(note.Tags)
			out = append(out, note)
		}
	}
	sortByCreatedDesc(out, func(n docsys.Note) time.Time { return n.CreatedAt }, func(n docsys.Note) string { return n.ID })
	return out, nil
}

func (r *noteRepo) Search(ctx context.Context, caller *models.Caller, query string, limit int) ([]docsys.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Note, 0)
	for _, note := range r.s.notes {
		if note.UserID == caller.UserID && (containsFold(note.Title, query) || containsFold(note.Content, query)) {
			note.Tags = copyStrings(note.Tags)
			out = append(out, note)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *noteRepo) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	refs := make([]docsys.ContentRef, 0)
	for _, note := range r.s.notes {
		if note.UserID == caller.UserID {
			refs = append(refs, docsys.ContentRef{ID: note.ID, Kind: docsys.KindNote, FolderID: note.FolderID})
		}
	}
	return refs, nil
}

type audioRepo struct{ s *Store }

func (r *audioRepo) Create(ctx context.Context, caller *models.Caller, audio *docsys.Audio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	audio.ID = newID()
	audio.UserID = caller.UserID
	audio.CreatedAt = r.s.stamp(audio.CreatedAt)
	audio.UpdatedAt = r.s.stamp(audio.UpdatedAt)
	stored := *audio
	stored.FolderPath = ""
	r.s.audio[audio.ID] = stored
	return nil
}

func (r *audioRepo) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Audio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	audio, ok := r.s.audio[id]
	if !ok || audio.UserID != caller.UserID {
		return nil, fmt.Errorf("audio %s: %w", id, domain.ErrNotFound)
	}
	return &audio, nil
}

func (r *audioRepo) Update(ctx context.Context, caller *models.Caller, audio *docsys.Audio) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.audio[audio.ID]
	if !ok || existing.UserID != caller.UserID {
		return fmt.Errorf("audio %s: %w", audio.ID, domain.ErrNotFound)
	}
	existing.Title = audio.Title
	existing.Transcription = audio.Transcription
	existing.FolderID = audio.FolderID
	existing.UpdatedAt = r.s.stamp(audio.UpdatedAt)
	r.s.audio[audio.ID] = existing
	audio.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *audioRepo) Delete(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	audio, ok := r.s.audio[id]
	if !ok || audio.UserID != caller.UserID {
		return fmt.Errorf("audio %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.audio, id)
	return nil
}

func (r *audioRepo) List(ctx context.Context, caller *models.Caller, filter docsys.ContentFilter) ([]docsys.Audio, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Audio, 0)
	for _, audio := range r.s.audio {
		if audio.UserID == caller.UserID && matchesFilter(audio.FolderID, filter) {
			out = append(out, audio)
		}
	}
	sortByCreatedDesc(out, func(a docsys.Audio) time.Time { return a.CreatedAt }, func(a docsys.Audio) string { return a.ID })
	return out, nil
}

func (r *audioRepo) ListRefs(ctx context.Context, caller *models.Caller) ([]docsys.ContentRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	refs := make([]docsys.ContentRef, 0)
	for _, audio := range r.s.audio {
		if audio.UserID == caller.UserID {
			refs = append(refs, docsys.ContentRef{ID: audio.ID, Kind: docsys.KindAudio, FolderID: audio.FolderID})
		}
	}
	return refs, nil
}
