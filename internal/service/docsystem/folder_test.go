package docsystem

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	docsysSvc "docassist/internal/domain/services/docsystem"
	"docassist/internal/httputil"
	"docassist/internal/repository/memory"
)

var testCaller = &models.Caller{UserID: "user-1", Email: "user@example.com"}

type folderFixture struct {
	store   *memory.Store
	folders docsysSvc.FolderService
	docs    docsysSvc.DocumentService
	notes   docsysSvc.NoteService
}

func newFolderFixture(t *testing.T) *folderFixture {
	t.Helper()
	return newFolderFixtureWithRepo(t, nil)
}

// newFolderFixtureWithRepo lets a test wrap the folder repository, e.g. to inject failures
func newFolderFixtureWithRepo(t *testing.T, wrap func(docsysRepo.FolderRepository) docsysRepo.FolderRepository) *folderFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := memory.NewStore()

	folderRepo := store.Folders()
	if wrap != nil {
		folderRepo = wrap(folderRepo)
	}
	validator := NewResourceValidator(folderRepo)

	return &folderFixture{
		store:   store,
		folders: NewFolderService(folderRepo, store.Documents(), store.Notes(), store.Audio(), logger),
		docs:    NewDocumentService(store.Documents(), folderRepo, validator, nil, logger),
		notes:   NewNoteService(store.Notes(), folderRepo, validator, nil, logger),
	}
}

func (f *folderFixture) mustCreate(t *testing.T, name string, parentID *string) *docsys.Folder {
	t.Helper()
	folder, err := f.folders.CreateFolder(context.Background(), testCaller, &docsysSvc.CreateFolderRequest{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("CreateFolder(%q) error = %v", name, err)
	}
	return folder
}

func moveTo(parentID *string) *docsysSvc.UpdateFolderRequest {
	return &docsysSvc.UpdateFolderRequest{ParentID: httputil.OptionalString{Present: true, Value: parentID}}
}

func TestFolderService_CreateFolderWithPath(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	c := f.mustCreate(t, "Projects/Alpha/Specs", nil)
	if c.Name != "Specs" {
		t.Errorf("Name = %q, want Specs", c.Name)
	}
	if c.Path != "Projects/Alpha/Specs" {
		t.Errorf("Path = %q, want Projects/Alpha/Specs", c.Path)
	}

	// Reusing an existing prefix must not duplicate intermediate folders
	f.mustCreate(t, "Projects/Beta", nil)

	all, err := f.folders.ListFolders(ctx, testCaller)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListFolders() returned %d folders, want 4", len(all))
	}
}

func TestFolderService_CreateFolderDuplicate(t *testing.T) {
	f := newFolderFixture(t)
	f.mustCreate(t, "Inbox", nil)

	_, err := f.folders.CreateFolder(context.Background(), testCaller, &docsysSvc.CreateFolderRequest{Name: "Inbox"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestFolderService_CreateFolderMissingParent(t *testing.T) {
	f := newFolderFixture(t)

	_, err := f.folders.CreateFolder(context.Background(), testCaller, &docsysSvc.CreateFolderRequest{Name: "Child", ParentID: strPtr("nope")})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// failingCreate fails the final Create call while letting intermediate folders through
type failingCreate struct {
	docsysRepo.FolderRepository
}

func (r failingCreate) Create(ctx context.Context, caller *models.Caller, folder *docsys.Folder) error {
	return errors.New("insert failed")
}

func TestFolderService_CreateFolderPartialFailure(t *testing.T) {
	f := newFolderFixtureWithRepo(t, func(repo docsysRepo.FolderRepository) docsysRepo.FolderRepository {
		return failingCreate{repo}
	})
	ctx := context.Background()

	if _, err := f.folders.CreateFolder(ctx, testCaller, &docsysSvc.CreateFolderRequest{Name: "a/b/c"}); err == nil {
		t.Fatal("expected error from final create")
	}

	// Intermediate folders stay behind
	all, err := f.store.Folders().ListAll(ctx, testCaller)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	paths := map[string]bool{}
	for _, folder := range BuildForest(all).Folders() {
		paths[folder.Path] = true
	}
	if len(paths) != 2 || !paths["a"] || !paths["a/b"] {
		t.Errorf("remaining paths = %v, want a and a/b", paths)
	}
}

func TestFolderService_MoveRejectsCycles(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "A", nil)
	b := f.mustCreate(t, "B", &a.ID)
	c := f.mustCreate(t, "C", &b.ID)

	tests := []struct {
		name     string
		folderID string
		target   *string
	}{
		{"into itself", a.ID, &a.ID},
		{"into child", a.ID, &b.ID},
		{"into grandchild", a.ID, &c.ID},
		{"middle into its child", b.ID, &c.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folders.UpdateFolder(ctx, testCaller, tt.folderID, moveTo(tt.target))
			var cycle *domain.CycleError
			if !errors.As(err, &cycle) {
				t.Fatalf("expected CycleError, got %v", err)
			}
		})
	}

	// Nothing moved
	for id, want := range map[string]string{a.ID: "A", b.ID: "A/B", c.ID: "A/B/C"} {
		got, err := f.folders.GetFolder(ctx, testCaller, id)
		if err != nil {
			t.Fatalf("GetFolder(%s) error = %v", id, err)
		}
		if got.Path != want {
			t.Errorf("path of %s = %q, want %q", id, got.Path, want)
		}
	}
}

func TestFolderService_MoveAndRename(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	a := f.mustCreate(t, "A", nil)
	b := f.mustCreate(t, "B", &a.ID)
	x := f.mustCreate(t, "X", nil)

	moved, err := f.folders.UpdateFolder(ctx, testCaller, b.ID, moveTo(&x.ID))
	if err != nil {
		t.Fatalf("move error = %v", err)
	}
	if moved.Path != "X/B" {
		t.Errorf("Path = %q, want X/B", moved.Path)
	}

	toRoot, err := f.folders.UpdateFolder(ctx, testCaller, b.ID, moveTo(nil))
	if err != nil {
		t.Fatalf("move to root error = %v", err)
	}
	if toRoot.ParentID != nil || toRoot.Path != "B" {
		t.Errorf("got parent %v path %q, want root B", toRoot.ParentID, toRoot.Path)
	}

	name := "  Renamed  "
	renamed, err := f.folders.UpdateFolder(ctx, testCaller, b.ID, &docsysSvc.UpdateFolderRequest{Name: &name})
	if err != nil {
		t.Fatalf("rename error = %v", err)
	}
	if renamed.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", renamed.Name)
	}
}

func TestFolderService_UpdateValidation(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()
	a := f.mustCreate(t, "A", nil)
	f.mustCreate(t, "Taken", nil)

	slashed := "x/y"
	blank := "   "
	taken := "Taken"

	tests := []struct {
		name    string
		req     *docsysSvc.UpdateFolderRequest
		wantErr error
	}{
		{"empty request", &docsysSvc.UpdateFolderRequest{}, domain.ErrValidation},
		{"slash in name", &docsysSvc.UpdateFolderRequest{Name: &slashed}, domain.ErrValidation},
		{"blank name", &docsysSvc.UpdateFolderRequest{Name: &blank}, domain.ErrValidation},
		{"sibling name taken", &docsysSvc.UpdateFolderRequest{Name: &taken}, domain.ErrConflict},
		{"missing parent", moveTo(strPtr("missing")), domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.folders.UpdateFolder(ctx, testCaller, a.ID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFolderService_DeleteGuards(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	parent := f.mustCreate(t, "Parent", nil)
	child := f.mustCreate(t, "Child", &parent.ID)

	var notEmpty *domain.NotEmptyError
	err := f.folders.DeleteFolder(ctx, testCaller, parent.ID)
	if !errors.As(err, &notEmpty) || notEmpty.ChildFolders != 1 {
		t.Fatalf("expected NotEmptyError with 1 child, got %v", err)
	}

	if _, err := f.docs.CreateDocument(ctx, testCaller, &docsysSvc.CreateDocumentRequest{Title: "Doc", FolderID: &child.ID}); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if _, err := f.notes.CreateNote(ctx, testCaller, &docsysSvc.CreateNoteRequest{Title: "Note", FolderID: &child.ID}); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	err = f.folders.DeleteFolder(ctx, testCaller, child.ID)
	if !errors.As(err, &notEmpty) {
		t.Fatalf("expected NotEmptyError, got %v", err)
	}
	if notEmpty.Documents != 1 || notEmpty.Notes != 1 || notEmpty.Audio != 0 {
		t.Errorf("counts = %+v, want 1 document and 1 note", notEmpty)
	}

	empty := f.mustCreate(t, "Empty", nil)
	if err := f.folders.DeleteFolder(ctx, testCaller, empty.ID); err != nil {
		t.Fatalf("DeleteFolder(empty) error = %v", err)
	}
	if _, err := f.folders.GetFolder(ctx, testCaller, empty.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("deleted folder still readable: %v", err)
	}
}

func TestFolderService_GetTreeCounts(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	work := f.mustCreate(t, "Work", nil)
	f.mustCreate(t, "Work/Reports", nil)

	for _, req := range []*docsysSvc.CreateDocumentRequest{
		{Title: "In work", FolderID: &work.ID},
		{Title: "Loose"},
	} {
		if _, err := f.docs.CreateDocument(ctx, testCaller, req); err != nil {
			t.Fatalf("CreateDocument() error = %v", err)
		}
	}
	if _, err := f.notes.CreateNote(ctx, testCaller, &docsysSvc.CreateNoteRequest{Title: "Loose note"}); err != nil {
		t.Fatalf("CreateNote() error = %v", err)
	}

	tree, err := f.folders.GetTree(ctx, testCaller)
	if err != nil {
		t.Fatalf("GetTree() error = %v", err)
	}

	if tree.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", tree.TotalCount)
	}
	if tree.Unfiled.DocumentCount != 1 || tree.Unfiled.NoteCount != 1 {
		t.Errorf("Unfiled = %+v, want 1 document and 1 note", tree.Unfiled)
	}
	if len(tree.Folders) != 1 || tree.Folders[0].Counts.DocumentCount != 1 {
		t.Fatalf("root nodes = %+v, want Work with 1 document", tree.Folders)
	}
	if len(tree.Folders[0].Children) != 1 || tree.Folders[0].Children[0].Path != "Work/Reports" {
		t.Errorf("children of Work = %+v, want Reports", tree.Folders[0].Children)
	}
}

func TestFolderService_CallerIsolation(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()
	mine := f.mustCreate(t, "Mine", nil)

	other := &models.Caller{UserID: "user-2"}
	if _, err := f.folders.GetFolder(ctx, other, mine.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other caller GetFolder error = %v, want not found", err)
	}
	if err := f.folders.DeleteFolder(ctx, other, mine.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("other caller DeleteFolder error = %v, want not found", err)
	}
}

func TestFolderService_EnsureAndResolvePath(t *testing.T) {
	f := newFolderFixture(t)
	ctx := context.Background()

	first, err := f.folders.EnsurePath(ctx, testCaller, nil, "Meetings/2026")
	if err != nil {
		t.Fatalf("EnsurePath() error = %v", err)
	}
	again, err := f.folders.EnsurePath(ctx, testCaller, nil, "Meetings/2026")
	if err != nil {
		t.Fatalf("EnsurePath() second call error = %v", err)
	}
	if first.ID != again.ID {
		t.Errorf("EnsurePath created a duplicate: %s != %s", first.ID, again.ID)
	}

	child, err := f.folders.EnsurePath(ctx, testCaller, &first.ID, "Retro")
	if err != nil {
		t.Fatalf("EnsurePath() under parent error = %v", err)
	}
	if child.ParentID == nil || *child.ParentID != first.ID || child.Path != "Meetings/2026/Retro" {
		t.Errorf("child = %+v, want under %s", child, first.ID)
	}

	path, err := f.folders.ResolvePath(ctx, testCaller, &first.ID)
	if err != nil || path != "Meetings/2026" {
		t.Errorf("ResolvePath() = %q, %v; want Meetings/2026", path, err)
	}
	path, _ = f.folders.ResolvePath(ctx, testCaller, nil)
	if path != docsys.NoFolderPath {
		t.Errorf("ResolvePath(nil) = %q, want %q", path, docsys.NoFolderPath)
	}
}
