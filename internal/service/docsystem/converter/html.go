package converter

import (
	"context"
	"fmt"
	"strings"

	docsysSvc "docassist/internal/domain/services/docsystem"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
)

// htmlConverter sanitizes HTML and then converts it to markdown.
// Scripts, event handlers and javascript: URLs never reach the stored content.
type htmlConverter struct {
	policy    *bluemonday.Policy
	converter *md.Converter
}

// NewHTMLConverter creates an HTML to markdown converter
func NewHTMLConverter() docsysSvc.ContentConverter {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()

	return &htmlConverter{
		policy:    policy,
		converter: md.NewConverter("", true, nil),
	}
}

func (c *htmlConverter) Convert(_ context.Context, input []byte) (string, error) {
	text, err := normalizeText(input)
	if err != nil {
		return "", err
	}

	markdown, err := c.converter.ConvertString(c.policy.Sanitize(text))
	if err != nil {
		return "", fmt.Errorf("convert html to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

func (c *htmlConverter) Extensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string { return "html" }
