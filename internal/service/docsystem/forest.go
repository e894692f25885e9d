package docsystem

import (
	"sort"
	"strings"

	"docassist/internal/domain"
	models "docassist/internal/domain/models/docsystem"
)

// Forest is an immutable snapshot of one owner's folders. Nodes are stored in a
// name-sorted arena and refer to each other only by id; index resolves ids to
// arena positions. Build one per logical operation and discard it afterwards.
type Forest struct {
	arena    []models.Folder
	index    map[string]int
	children map[string][]int // parent id -> child positions, name order
	roots    []int
}

// BuildForest partitions a flat folder list into roots and a parent->children
// index. A folder whose parent is not in the list (or is itself) is a root.
func BuildForest(folders []models.Folder) *Forest {
	arena := make([]models.Folder, len(folders))
	copy(arena, folders)
	sort.SliceStable(arena, func(i, j int) bool {
		if arena[i].Name != arena[j].Name {
			return arena[i].Name < arena[j].Name
		}
		return arena[i].ID < arena[j].ID
	})

	f := &Forest{
		arena:    arena,
		index:    make(map[string]int, len(arena)),
		children: make(map[string][]int),
	}
	for i := range f.arena {
		if _, dup := f.index[f.arena[i].ID]; !dup {
			f.index[f.arena[i].ID] = i
		}
	}

	for i := range f.arena {
		if f.index[f.arena[i].ID] != i {
			continue // duplicate id, first wins
		}
		parentID := f.arena[i].ParentID
		if parentID == nil || *parentID == f.arena[i].ID {
			f.roots = append(f.roots, i)
			continue
		}
		if _, ok := f.index[*parentID]; !ok {
			f.roots = append(f.roots, i)
			continue
		}
		f.children[*parentID] = append(f.children[*parentID], i)
	}

	return f
}

// Len returns the number of distinct folders in the snapshot
func (f *Forest) Len() int {
	return len(f.index)
}

// Get returns the folder with the given id
func (f *Forest) Get(id string) (models.Folder, bool) {
	i, ok := f.index[id]
	if !ok {
		return models.Folder{}, false
	}
	return f.arena[i], true
}

// Folders returns every folder in name order with Path filled in
func (f *Forest) Folders() []models.Folder {
	out := make([]models.Folder, 0, len(f.index))
	for i := range f.arena {
		if f.index[f.arena[i].ID] != i {
			continue
		}
		folder := f.arena[i]
		folder.Path = f.ResolvePath(&folder.ID)
		out = append(out, folder)
	}
	return out
}

// Children returns the direct children of id in name order (nil id = roots)
func (f *Forest) Children(id *string) []models.Folder {
	var positions []int
	if id == nil {
		positions = f.roots
	} else {
		positions = f.children[*id]
	}

	out := make([]models.Folder, 0, len(positions))
	for _, i := range positions {
		out = append(out, f.arena[i])
	}
	return out
}

// ResolvePath walks parent pointers upward and joins ancestor names from the root
// down. A nil or unknown id yields NoFolderPath. The walk stops at a dangling
// parent or at a folder already seen, so it terminates on any input.
func (f *Forest) ResolvePath(id *string) string {
	if id == nil {
		return models.NoFolderPath
	}
	i, ok := f.index[*id]
	if !ok {
		return models.NoFolderPath
	}

	var names []string
	visited := make(map[int]bool)
	for {
		if visited[i] {
			break
		}
		visited[i] = true
		names = append(names, f.arena[i].Name)

		parentID := f.arena[i].ParentID
		if parentID == nil {
			break
		}
		next, ok := f.index[*parentID]
		if !ok {
			break
		}
		i = next
	}

	for l, r := 0, len(names)-1; l < r; l, r = l+1, r-1 {
		names[l], names[r] = names[r], names[l]
	}
	return strings.Join(names, models.PathSeparator)
}

// Tree returns the nested forest. counts supplies per-folder content counts and may be nil.
// Folders caught in a corrupt parent cycle are not reachable from any root; they are
// attached as extra roots (first in name order) so that every folder appears exactly once.
func (f *Forest) Tree(counts map[string]models.ContentCounts) []*models.FolderNode {
	placed := make(map[int]bool, len(f.arena))

	var build func(i int) *models.FolderNode
	build = func(i int) *models.FolderNode {
		placed[i] = true
		folder := f.arena[i]
		node := &models.FolderNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Path:      f.ResolvePath(&folder.ID),
			CreatedAt: folder.CreatedAt,
			Counts:    counts[folder.ID],
			Children:  []*models.FolderNode{},
		}
		for _, c := range f.children[folder.ID] {
			if placed[c] {
				continue
			}
			node.Children = append(node.Children, build(c))
		}
		return node
	}

	nodes := make([]*models.FolderNode, 0, len(f.roots))
	for _, i := range f.roots {
		nodes = append(nodes, build(i))
	}
	for i := range f.arena {
		if placed[i] || f.index[f.arena[i].ID] != i {
			continue
		}
		nodes = append(nodes, build(i))
	}
	return nodes
}

// CheckMove verifies that making newParentID the parent of folderID keeps the
// forest acyclic. It walks upward from newParentID; meeting folderID is a cycle.
// Moving to the root (nil) is always allowed.
func (f *Forest) CheckMove(folderID string, newParentID *string) error {
	if newParentID == nil {
		return nil
	}
	if *newParentID == folderID {
		return &domain.CycleError{FolderID: folderID, NewParentID: *newParentID}
	}

	current := *newParentID
	visited := make(map[string]bool)
	for {
		if current == folderID {
			return &domain.CycleError{FolderID: folderID, NewParentID: *newParentID}
		}
		if visited[current] {
			return nil // pre-existing cycle that does not involve folderID
		}
		visited[current] = true

		i, ok := f.index[current]
		if !ok || f.arena[i].ParentID == nil {
			return nil
		}
		current = *f.arena[i].ParentID
	}
}

// CheckDelete rejects deleting a folder that has child folders or directly
// assigned content. counts must describe the content placed in folderID.
func (f *Forest) CheckDelete(folderID string, counts models.ContentCounts) error {
	childFolders := len(f.children[folderID])
	if childFolders == 0 && counts.Total() == 0 {
		return nil
	}
	return &domain.NotEmptyError{
		FolderID:     folderID,
		ChildFolders: childFolders,
		Documents:    counts.DocumentCount,
		Notes:        counts.NoteCount,
		Audio:        counts.AudioCount,
	}
}

// CountContents scans each content list once and counts the items placed directly in folderID
func CountContents(folderID string, items ...[]models.ContentRef) models.ContentCounts {
	var counts models.ContentCounts
	for _, list := range items {
		for _, ref := range list {
			if ref.FolderID == nil || *ref.FolderID != folderID {
				continue
			}
			addRef(&counts, ref.Kind)
		}
	}
	return counts
}

// CountAll groups content counts by folder in a single pass. Items without a
// folder are returned separately as unfiled.
func CountAll(items ...[]models.ContentRef) (byFolder map[string]models.ContentCounts, unfiled models.ContentCounts) {
	byFolder = make(map[string]models.ContentCounts)
	for _, list := range items {
		for _, ref := range list {
			if ref.FolderID == nil {
				addRef(&unfiled, ref.Kind)
				continue
			}
			c := byFolder[*ref.FolderID]
			addRef(&c, ref.Kind)
			byFolder[*ref.FolderID] = c
		}
	}
	return byFolder, unfiled
}

func addRef(c *models.ContentCounts, kind models.ContentKind) {
	switch kind {
	case models.KindDocument:
		c.DocumentCount++
	case models.KindNote:
		c.NoteCount++
	case models.KindAudio:
		c.AudioCount++
	}
}
