package docsystem

import "context"

// ContentConverter turns the bytes of one file type into document text.
// Implementations are stateless and safe for concurrent use.
type ContentConverter interface {
	// Convert returns markdown (or plain text, which is valid markdown)
	Convert(ctx context.Context, input []byte) (string, error)

	// Extensions lists handled file extensions with the leading dot
	Extensions() []string

	// Name is used in logs
	Name() string
}

// ContentExtractor picks a converter for an uploaded file.
// ok is false when the file type carries no extractable text (images, PDFs, audio).
type ContentExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) (content string, ok bool, err error)
}
