package memory

import (
	"context"
	"fmt"
	"sort"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
)

type folderRepo struct{ s *Store }

func (r *folderRepo) Create(ctx context.Context, caller *models.Caller, folder *docsys.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.folders {
		if f.UserID == caller.UserID && f.Name == folder.Name && sameFolder(f.ParentID, folder.ParentID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}

	folder.ID = newID()
	folder.UserID = caller.UserID
	folder.CreatedAt = r.s.stamp(folder.CreatedAt)
	folder.UpdatedAt = r.s.stamp(folder.UpdatedAt)
	stored := *folder
	stored.Path = ""
	r.s.folders[folder.ID] = stored
	return nil
}

func (r *folderRepo) GetByID(ctx context.Context, caller *models.Caller, id string) (*docsys.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[id]
	if !ok || f.UserID != caller.UserID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return &f, nil
}

func (r *folderRepo) Update(ctx context.Context, caller *models.Caller, folder *docsys.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.folders[folder.ID]
	if !ok || existing.UserID != caller.UserID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	existing.Name = folder.Name
	existing.ParentID = folder.ParentID
	existing.UpdatedAt = r.s.stamp(folder.UpdatedAt)
	r.s.folders[folder.ID] = existing
	return nil
}

func (r *folderRepo) Delete(ctx context.Context, caller *models.Caller, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.folders[id]
	if !ok || f.UserID != caller.UserID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(r.s.folders, id)
	return nil
}

func (r *folderRepo) ListAll(ctx context.Context, caller *models.Caller) ([]docsys.Folder, error) {
	return r.list(caller, func(docsys.Folder) bool { return true }), nil
}

func (r *folderRepo) ListChildren(ctx context.Context, caller *models.Caller, parentID *string) ([]docsys.Folder, error) {
	return r.list(caller, func(f docsys.Folder) bool { return sameFolder(f.ParentID, parentID) }), nil
}

func (r *folderRepo) CreateIfNotExists(ctx context.Context, caller *models.Caller, parentID *string, name string) (*docsys.Folder, error) {
	for _, f := range r.list(caller, func(f docsys.Folder) bool { return sameFolder(f.ParentID, parentID) }) {
		if f.Name == name {
			return &f, nil
		}
	}

	folder := &docsys.Folder{ParentID: parentID, Name: name}
	if err := r.Create(ctx, caller, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

func (r *folderRepo) list(caller *models.Caller, keep func(docsys.Folder) bool) []docsys.Folder {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]docsys.Folder, 0)
	for _, f := range r.s.folders {
		if f.UserID == caller.UserID && keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
