package docsystem

import (
	"context"
	"log/slog"

	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	"docassist/internal/domain/services"
)

// folderPaths loads a forest used to fill FolderPath on content items.
// A failure is logged and yields nil; callers then fall back to "No folder".
func folderPaths(ctx context.Context, caller *models.Caller, folderRepo docsysRepo.FolderRepository, logger *slog.Logger) *Forest {
	folders, err := folderRepo.ListAll(ctx, caller)
	if err != nil {
		logger.Warn("failed to load folders for paths", "user_id", caller.UserID, "error", err)
		return nil
	}
	return BuildForest(folders)
}

func pathOf(forest *Forest, folderID *string) string {
	if forest == nil {
		return docsys.NoFolderPath
	}
	return forest.ResolvePath(folderID)
}

// noopIndexer is used when no search index is configured
type noopIndexer struct{}

func (noopIndexer) IndexDocument(context.Context, *docsys.Document) error    { return nil }
func (noopIndexer) IndexNote(context.Context, *docsys.Note) error            { return nil }
func (noopIndexer) Remove(context.Context, docsys.ContentKind, string) error { return nil }

func indexerOrNoop(indexer services.SearchIndexer) services.SearchIndexer {
	if indexer == nil {
		return noopIndexer{}
	}
	return indexer
}
