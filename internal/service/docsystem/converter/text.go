package converter

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	docsysSvc "docassist/internal/domain/services/docsystem"
)

// ErrNotUTF8 is returned for text files that are not valid UTF-8
var ErrNotUTF8 = errors.New("file is not valid UTF-8 text")

// normalizeText strips a byte-order mark and converts line endings to \n
func normalizeText(input []byte) (string, error) {
	if !utf8.Valid(input) {
		return "", ErrNotUTF8
	}
	s := strings.TrimPrefix(string(input), "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), nil
}

// textConverter stores plain text as-is; plain text is valid markdown.
type textConverter struct{}

// NewTextConverter handles plain text and text-like data files
func NewTextConverter() docsysSvc.ContentConverter {
	return textConverter{}
}

func (textConverter) Convert(_ context.Context, input []byte) (string, error) {
	return normalizeText(input)
}

func (textConverter) Extensions() []string {
	return []string{".txt", ".text", ".log", ".csv", ".json"}
}

func (textConverter) Name() string { return "plaintext" }

// markdownConverter is a passthrough; markdown is the storage format.
type markdownConverter struct{}

// NewMarkdownConverter handles markdown files
func NewMarkdownConverter() docsysSvc.ContentConverter {
	return markdownConverter{}
}

func (markdownConverter) Convert(_ context.Context, input []byte) (string, error) {
	return normalizeText(input)
}

func (markdownConverter) Extensions() []string {
	return []string{".md", ".markdown"}
}

func (markdownConverter) Name() string { return "markdown" }
