package docsystem

import (
	"testing"

	docsys "docassist/internal/domain/models/docsystem"
)

func TestFilterClause(t *testing.T) {
	folderID := "f1"

	tests := []struct {
		name     string
		filter   docsys.ContentFilter
		wantSQL  string
		wantArgs int
	}{
		{"no filter", docsys.ContentFilter{}, "", 0},
		{"folder", docsys.ContentFilter{FolderID: &folderID}, " AND folder_id = $2", 1},
		{"unfiled", docsys.ContentFilter{Unfiled: true}, " AND folder_id IS NULL", 0},
		{"unfiled wins", docsys.ContentFilter{FolderID: &folderID, Unfiled: true}, " AND folder_id IS NULL", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := filterClause(tt.filter)
			if sql != tt.wantSQL {
				t.Errorf("sql = %q, want %q", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sprint", "%sprint%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
	}

	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
