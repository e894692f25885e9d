package docsystem

import (
	"fmt"
	"strings"
	"unicode"
)

// PathParseResult contains the parsed components of a folder path
type PathParseResult struct {
	Segments   []string // Individual path segments (e.g., ["Projects", "Alpha", "Specs"])
	IsAbsolute bool     // True if path starts with "/" (absolute from root)
	FinalName  string   // The final segment (the folder actually requested)
	ParentPath []string // All segments except the final one
}

// ParsePath parses a folder name that may contain path notation.
//
// Path conventions:
//   - Leading "/" means absolute path from root (ignore parent_id)
//   - No leading "/" means relative to parent_id
//   - Segments are split by "/" and trimmed
//
// Examples:
//   - "name" → {["name"], false, "name", []}
//   - "a/b/c" → {["a", "b", "c"], false, "c", ["a", "b"]}
//   - "/a/b/c" → {["a", "b", "c"], true, "c", ["a", "b"]}
//
// Empty segments ("a//b", "a/") and control characters are rejected.
func ParsePath(name string, maxSegmentLength int) (*PathParseResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	isAbsolute := strings.HasPrefix(name, "/")
	trimmed := strings.TrimPrefix(name, "/")

	if strings.HasSuffix(trimmed, "/") {
		return nil, fmt.Errorf("path cannot end with '/'")
	}
	if strings.Contains(trimmed, "//") {
		return nil, fmt.Errorf("path cannot contain consecutive slashes '//'")
	}

	segments := strings.Split(trimmed, "/")
	for i, segment := range segments {
		segment = strings.TrimSpace(segment)
		segments[i] = segment

		if segment == "" {
			return nil, fmt.Errorf("path segment at position %d is empty", i)
		}
		if len([]rune(segment)) > maxSegmentLength {
			return nil, fmt.Errorf("path segment '%s' exceeds maximum length of %d", segment, maxSegmentLength)
		}
		for _, char := range segment {
			if unicode.IsControl(char) {
				return nil, fmt.Errorf("path segment '%s' contains a control character", segment)
			}
		}
	}

	var parentPath []string
	if len(segments) > 1 {
		parentPath = segments[:len(segments)-1]
	}

	return &PathParseResult{
		Segments:   segments,
		IsAbsolute: isAbsolute,
		FinalName:  segments[len(segments)-1],
		ParentPath: parentPath,
	}, nil
}

// ResolveParentID resolves the starting parent for path notation:
//   - absolute paths always start from root
//   - relative paths start from providedParentID (which may be nil for root)
func ResolveParentID(isAbsolute bool, providedParentID *string) *string {
	if isAbsolute {
		return nil
	}
	return providedParentID
}
