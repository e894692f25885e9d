package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	docsysSvc "docassist/internal/domain/services/docsystem"
	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/repository/memory"
	"docassist/internal/service/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type organizerFixture struct {
	store     *memory.Store
	folders   docsysSvc.FolderService
	documents docsysSvc.DocumentService
	organizer llmSvc.OrganizerService
}

func newOrganizerFixture(t *testing.T, gen *scriptedGenerator) *organizerFixture {
	t.Helper()
	store := memory.NewStore()
	logger := testLogger()

	folders := docsystem.NewFolderService(store.Folders(), store.Documents(), store.Notes(), store.Audio(), logger)
	documents := docsystem.NewDocumentService(store.Documents(), store.Folders(), docsystem.NewResourceValidator(store.Folders()), nil, logger)
	classifier := NewDocumentClassifier(gen, testPrompts(t), "", logger)

	return &organizerFixture{
		store:     store,
		folders:   folders,
		documents: documents,
		organizer: NewOrganizerService(documents, folders, classifier, logger),
	}
}

func (f *organizerFixture) createDoc(t *testing.T) *docsys.Document {
	t.Helper()
	doc, err := f.documents.CreateDocument(context.Background(), testCaller, &docsysSvc.CreateDocumentRequest{
		Title:   "Standup",
		Content: "Alice: shipped search. Bob: blocked on review.",
	})
	require.NoError(t, err)
	return doc
}

func TestOrganizer_ClassifyDoesNotMove(t *testing.T) {
	f := newOrganizerFixture(t, &scriptedGenerator{text: validClassification})
	doc := f.createDoc(t)

	got, err := f.organizer.Classify(context.Background(), testCaller, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standups", got.FolderRecommendation.Name)

	stored, err := f.documents.GetDocument(context.Background(), testCaller, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.FolderID)

	all, err := f.folders.ListFolders(context.Background(), testCaller)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOrganizer_Organize(t *testing.T) {
	f := newOrganizerFixture(t, &scriptedGenerator{text: validClassification})
	ctx := context.Background()
	doc := f.createDoc(t)

	result, err := f.organizer.Organize(ctx, testCaller, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, "Team/Standups", result.Folder.Path)
	require.Len(t, result.Subfolders, 2)
	assert.Equal(t, "Team/Standups/2026", result.Subfolders[0].Path)
	assert.Equal(t, "Team/Standups/Q1", result.Subfolders[1].Path)

	require.NotNil(t, result.Document.FolderID)
	assert.Equal(t, result.Folder.ID, *result.Document.FolderID)
	require.NotNil(t, result.Document.DocumentType)
	assert.Equal(t, "meeting_notes", *result.Document.DocumentType)

	// A second document reuses the same folders
	second := f.createDoc(t)
	again, err := f.organizer.Organize(ctx, testCaller, second.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Folder.ID, again.Folder.ID)

	all, err := f.folders.ListFolders(ctx, testCaller)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

// degradedFolders serves the first ListAll, then fails so folder paths fall back to names
type degradedFolders struct {
	docsysRepo.FolderRepository
	calls int
}

func (r *degradedFolders) ListAll(ctx context.Context, caller *models.Caller) ([]docsys.Folder, error) {
	r.calls++
	if r.calls > 1 {
		return nil, errors.New("connection reset")
	}
	return r.FolderRepository.ListAll(ctx, caller)
}

func TestOrganizer_SubfoldersFollowTargetWithoutPaths(t *testing.T) {
	f := newOrganizerFixture(t, &scriptedGenerator{text: validClassification})
	logger := testLogger()
	folders := docsystem.NewFolderService(&degradedFolders{FolderRepository: f.store.Folders()},
		f.store.Documents(), f.store.Notes(), f.store.Audio(), logger)
	classifier := NewDocumentClassifier(&scriptedGenerator{text: validClassification}, testPrompts(t), "", logger)
	organizer := NewOrganizerService(f.documents, folders, classifier, logger)
	ctx := context.Background()
	doc := f.createDoc(t)

	result, err := organizer.Organize(ctx, testCaller, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standups", result.Folder.Path)
	require.Len(t, result.Subfolders, 2)
	for _, sub := range result.Subfolders {
		require.NotNil(t, sub.ParentID)
		assert.Equal(t, result.Folder.ID, *sub.ParentID, "subfolder %s", sub.Name)
	}

	all, err := f.store.Folders().ListAll(ctx, testCaller)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOrganizer_MalformedLeavesDocument(t *testing.T) {
	f := newOrganizerFixture(t, &scriptedGenerator{text: "I think this is a meeting."})
	doc := f.createDoc(t)

	_, err := f.organizer.Organize(context.Background(), testCaller, doc.ID)
	var malformed *domain.MalformedResponseError
	require.True(t, errors.As(err, &malformed))

	stored, err := f.documents.GetDocument(context.Background(), testCaller, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.FolderID)
	assert.Nil(t, stored.DocumentType)
}

func TestOrganizer_UnusableFolderName(t *testing.T) {
	raw := strings.Replace(validClassification, `"Standups"`, `"Stand\u0007ups"`, 1)
	f := newOrganizerFixture(t, &scriptedGenerator{text: raw})
	doc := f.createDoc(t)

	_, err := f.organizer.Organize(context.Background(), testCaller, doc.ID)
	var malformed *domain.MalformedResponseError
	require.True(t, errors.As(err, &malformed), "got %v", err)
	assert.Equal(t, "organize_document", malformed.Operation)
}

func TestOrganizer_UnknownDocument(t *testing.T) {
	f := newOrganizerFixture(t, &scriptedGenerator{text: validClassification})
	_, err := f.organizer.Organize(context.Background(), testCaller, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
