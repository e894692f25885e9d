package converter

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	docsysSvc "docassist/internal/domain/services/docsystem"
)

var _ docsysSvc.ContentExtractor = (*Registry)(nil)

// Registry routes uploaded files to converters by extension, then by MIME type.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]docsysSvc.ContentConverter // key: lowercase extension
	mimeTypes  map[string]docsysSvc.ContentConverter // key: media type without params
}

// NewRegistry creates a registry with the plain text, markdown and HTML converters.
func NewRegistry() *Registry {
	r := &Registry{
		converters: make(map[string]docsysSvc.ContentConverter),
		mimeTypes:  make(map[string]docsysSvc.ContentConverter),
	}

	plain := NewTextConverter()
	markdown := NewMarkdownConverter()
	html := NewHTMLConverter()

	r.Register(plain, "text/plain", "text/csv", "application/json")
	r.Register(markdown, "text/markdown", "text/x-markdown")
	r.Register(html, "text/html", "application/xhtml+xml")

	return r
}

// Register associates a converter with its extensions and any extra MIME types.
// Extensions are normalized to lowercase with a leading dot.
func (r *Registry) Register(c docsysSvc.ContentConverter, mimeTypes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range c.Extensions() {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		r.converters[ext] = c
	}
	for _, mt := range mimeTypes {
		r.mimeTypes[strings.ToLower(mt)] = c
	}
}

// Lookup returns the converter for a file, or nil.
// The extension wins over the content type, which browsers often get wrong.
func (r *Registry) Lookup(filename, contentType string) docsysSvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.converters[strings.ToLower(filepath.Ext(filename))]; ok {
		return c
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	if c, ok := r.mimeTypes[mediaType]; ok {
		return c
	}
	// Unknown text/* subtypes are still text
	if strings.HasPrefix(mediaType, "text/") {
		return r.mimeTypes["text/plain"]
	}
	return nil
}

// Extract converts data when a converter handles the file type
func (r *Registry) Extract(ctx context.Context, filename, contentType string, data []byte) (string, bool, error) {
	c := r.Lookup(filename, contentType)
	if c == nil {
		return "", false, nil
	}

	content, err := c.Convert(ctx, data)
	if err != nil {
		return "", false, fmt.Errorf("%s converter: %w", c.Name(), err)
	}
	return content, true, nil
}

// Extensions returns all registered file extensions
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	return exts
}
