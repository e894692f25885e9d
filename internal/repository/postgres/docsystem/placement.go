package docsystem

import (
	"context"
	"fmt"
	"strings"

	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/repositories"
)

// listRefs loads id + folder_id for every row of a content table owned by the caller
func listRefs(ctx context.Context, pool repositories.DBTX, table string, kind docsys.ContentKind, caller *models.Caller) ([]docsys.ContentRef, error) {
	query := fmt.Sprintf(`SELECT id, folder_id FROM %s WHERE user_id = $1`, table)

	rows, err := pool.Query(ctx, query, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list %s refs: %w", kind, err)
	}
	defer rows.Close()

	refs := make([]docsys.ContentRef, 0)
	for rows.Next() {
		ref := docsys.ContentRef{Kind: kind}
		if err := rows.Scan(&ref.ID, &ref.FolderID); err != nil {
			return nil, fmt.Errorf("scan %s ref: %w", kind, err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s refs: %w", kind, err)
	}
	return refs, nil
}

// filterClause builds the WHERE tail for a ContentFilter; args continue after $1 (user_id)
func filterClause(filter docsys.ContentFilter) (string, []interface{}) {
	switch {
	case filter.Unfiled:
		return " AND folder_id IS NULL", nil
	case filter.FolderID != nil:
		return " AND folder_id = $2", []interface{}{*filter.FolderID}
	default:
		return "", nil
	}
}

// likePattern escapes LIKE wildcards so user input is matched literally
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}
