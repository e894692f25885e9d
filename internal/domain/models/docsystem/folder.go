package docsystem

import (
	"time"
)

// NoFolderPath is the display path for content that is not placed in any folder.
const NoFolderPath = "No folder"

// PathSeparator joins ancestor names in a folder's display path.
const PathSeparator = "/"

type Folder struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	Name      string    `json:"name" db:"name"`
	Path      string    `json:"path,omitempty"` // Computed display path, not stored in DB
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of its tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
