package docsystem

import (
	"errors"
	"reflect"
	"testing"

	"docassist/internal/domain"
	models "docassist/internal/domain/models/docsystem"
)

func strPtr(s string) *string { return &s }

func folder(id, name string, parent *string) models.Folder {
	return models.Folder{ID: id, Name: name, ParentID: parent}
}

// projects -> {alpha -> {specs}, beta}, archive
func sampleFolders() []models.Folder {
	return []models.Folder{
		folder("p", "Projects", nil),
		folder("a", "Alpha", strPtr("p")),
		folder("s", "Specs", strPtr("a")),
		folder("b", "Beta", strPtr("p")),
		folder("r", "Archive", nil),
	}
}

func nodeNames(nodes []*models.FolderNode) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
	}
	return names
}

func TestBuildForest_Tree(t *testing.T) {
	tree := BuildForest(sampleFolders()).Tree(nil)

	if got, want := nodeNames(tree), []string{"Archive", "Projects"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("roots = %v, want %v", got, want)
	}

	projects := tree[1]
	if got, want := nodeNames(projects.Children), []string{"Alpha", "Beta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Projects children = %v, want %v", got, want)
	}
	if got := projects.Children[0].Children[0].Path; got != "Projects/Alpha/Specs" {
		t.Errorf("Specs path = %q", got)
	}
}

func TestBuildForest_DanglingParentIsRoot(t *testing.T) {
	folders := []models.Folder{
		folder("x", "Orphan", strPtr("missing")),
		folder("y", "Root", nil),
	}

	tree := BuildForest(folders).Tree(nil)
	if got, want := nodeNames(tree), []string{"Orphan", "Root"}; !reflect.DeepEqual(got, want) {
		t.Errorf("roots = %v, want %v", got, want)
	}
}

func TestBuildForest_Deterministic(t *testing.T) {
	first := BuildForest(sampleFolders()).Tree(nil)

	// Same records in a different order must give the same structure
	shuffled := sampleFolders()
	shuffled[0], shuffled[4] = shuffled[4], shuffled[0]
	shuffled[1], shuffled[3] = shuffled[3], shuffled[1]

	for i := 0; i < 3; i++ {
		again := BuildForest(shuffled).Tree(nil)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different tree", i)
		}
	}
}

func TestBuildForest_DoesNotAliasInput(t *testing.T) {
	folders := sampleFolders()
	forest := BuildForest(folders)
	folders[0].Name = "Changed"

	if f, _ := forest.Get("p"); f.Name != "Projects" {
		t.Errorf("snapshot changed with input: %q", f.Name)
	}
}

func TestForest_ResolvePath(t *testing.T) {
	forest := BuildForest(sampleFolders())

	tests := []struct {
		name string
		id   *string
		want string
	}{
		{"nil id", nil, "No folder"},
		{"unknown id", strPtr("nope"), "No folder"},
		{"root", strPtr("p"), "Projects"},
		{"nested", strPtr("s"), "Projects/Alpha/Specs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := forest.ResolvePath(tt.id); got != tt.want {
				t.Errorf("ResolvePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForest_ResolvePath_Terminates(t *testing.T) {
	folders := []models.Folder{
		folder("d", "Dangling", strPtr("ghost")),
		folder("c1", "Loop A", strPtr("c2")),
		folder("c2", "Loop B", strPtr("c1")),
		folder("self", "Self", strPtr("self")),
	}
	forest := BuildForest(folders)

	if got := forest.ResolvePath(strPtr("d")); got != "Dangling" {
		t.Errorf("dangling path = %q, want Dangling", got)
	}
	if got := forest.ResolvePath(strPtr("c1")); got != "Loop B/Loop A" {
		t.Errorf("cycle path = %q, want %q", got, "Loop B/Loop A")
	}
	if got := forest.ResolvePath(strPtr("self")); got != "Self" {
		t.Errorf("self path = %q, want Self", got)
	}

	// corrupt cycles still appear once each in the tree
	tree := forest.Tree(nil)
	seen := 0
	var walk func([]*models.FolderNode)
	walk = func(nodes []*models.FolderNode) {
		for _, n := range nodes {
			seen++
			walk(n.Children)
		}
	}
	walk(tree)
	if seen != len(folders) {
		t.Errorf("tree holds %d nodes, want %d", seen, len(folders))
	}
}

func TestForest_CheckMove(t *testing.T) {
	forest := BuildForest(sampleFolders())

	tests := []struct {
		name      string
		folderID  string
		newParent *string
		wantCycle bool
	}{
		{"to root", "s", nil, false},
		{"to sibling", "a", strPtr("b"), false},
		{"to other tree", "p", strPtr("r"), false},
		{"into itself", "a", strPtr("a"), true},
		{"into child", "p", strPtr("a"), true},
		{"into grandchild", "p", strPtr("s"), true},
		{"unknown parent", "a", strPtr("ghost"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := forest.CheckMove(tt.folderID, tt.newParent)
			var cycleErr *domain.CycleError
			if got := errors.As(err, &cycleErr); got != tt.wantCycle {
				t.Fatalf("CheckMove() error = %v, wantCycle %v", err, tt.wantCycle)
			}
			if tt.wantCycle && cycleErr.FolderID != tt.folderID {
				t.Errorf("FolderID = %q, want %q", cycleErr.FolderID, tt.folderID)
			}
		})
	}
}

// Any move into one's own subtree is rejected, for every pair in the forest
func TestForest_CheckMove_NoDescendantAccepted(t *testing.T) {
	folders := sampleFolders()
	forest := BuildForest(folders)

	isAncestor := func(ancestor, id string) bool {
		for cur, ok := forest.Get(id); ok; {
			if cur.ID == ancestor {
				return true
			}
			if cur.ParentID == nil {
				return false
			}
			cur, ok = forest.Get(*cur.ParentID)
		}
		return false
	}

	for _, mover := range folders {
		for _, target := range folders {
			err := forest.CheckMove(mover.ID, strPtr(target.ID))
			if isAncestor(mover.ID, target.ID) && err == nil {
				t.Errorf("move %s under %s accepted", mover.Name, target.Name)
			}
			if !isAncestor(mover.ID, target.ID) && err != nil {
				t.Errorf("move %s under %s rejected: %v", mover.Name, target.Name, err)
			}
		}
	}
}

func TestForest_CheckDelete(t *testing.T) {
	forest := BuildForest(sampleFolders())

	tests := []struct {
		name    string
		id      string
		counts  models.ContentCounts
		wantErr string
	}{
		{"empty leaf", "s", models.ContentCounts{}, ""},
		{"has subfolders", "p", models.ContentCounts{}, "cannot delete folder with subfolders"},
		{"has documents", "b", models.ContentCounts{DocumentCount: 2}, "cannot delete folder with content (2 documents, 0 notes, 0 audio)"},
		{"has audio", "r", models.ContentCounts{AudioCount: 1}, "cannot delete folder with content (0 documents, 0 notes, 1 audio)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := forest.CheckDelete(tt.id, tt.counts)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("CheckDelete() unexpected error: %v", err)
				}
				return
			}
			var notEmpty *domain.NotEmptyError
			if !errors.As(err, &notEmpty) {
				t.Fatalf("CheckDelete() error = %v, want NotEmptyError", err)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCountContents(t *testing.T) {
	docs := []models.ContentRef{
		{ID: "d1", Kind: models.KindDocument, FolderID: strPtr("a")},
		{ID: "d2", Kind: models.KindDocument, FolderID: strPtr("a")},
		{ID: "d3", Kind: models.KindDocument, FolderID: nil},
	}
	notes := []models.ContentRef{{ID: "n1", Kind: models.KindNote, FolderID: strPtr("a")}}
	audio := []models.ContentRef{{ID: "x1", Kind: models.KindAudio, FolderID: strPtr("b")}}

	got := CountContents("a", docs, notes, audio)
	want := models.ContentCounts{DocumentCount: 2, NoteCount: 1}
	if got != want {
		t.Errorf("CountContents(a) = %+v, want %+v", got, want)
	}

	byFolder, unfiled := CountAll(docs, notes, audio)
	if byFolder["a"] != want {
		t.Errorf("CountAll[a] = %+v, want %+v", byFolder["a"], want)
	}
	if byFolder["b"].AudioCount != 1 {
		t.Errorf("CountAll[b] = %+v", byFolder["b"])
	}
	if unfiled.DocumentCount != 1 || unfiled.Total() != 1 {
		t.Errorf("unfiled = %+v", unfiled)
	}
}
