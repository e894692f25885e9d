package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docassist/internal/domain"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validClassification = `{
	"document_type": "meeting_notes",
	"confidence": 0.92,
	"folder_recommendation": {
		"name": "Standups",
		"parent_path": "/Team/",
		"subfolders": ["2026", " Q1 "],
		"confidence": 0.8,
		"reasoning": "Recurring sync notes"
	},
	"organization_insights": {
		"key_topics": ["release", "blockers"],
		"summary": "Weekly standup.",
		"tags": ["standup"]
	}
}`

func TestParseClassification_Valid(t *testing.T) {
	got, err := ParseClassification("```json\n" + validClassification + "\n```")
	require.NoError(t, err)

	assert.Equal(t, llm.DocTypeMeetingNotes, got.DocumentType)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
	assert.Equal(t, "Standups", got.FolderRecommendation.Name)
	assert.Equal(t, "Team", got.FolderRecommendation.ParentPath)
	assert.Equal(t, []string{"2026", "Q1"}, got.FolderRecommendation.Subfolders)
	assert.Equal(t, "Recurring sync notes", got.FolderRecommendation.Reasoning)
	assert.Equal(t, []string{"standup"}, got.OrganizationInsights.Tags)
}

func TestParseClassification_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "This looks like meeting notes."},
		{"truncated", `{"document_type": "report", "confidence": 0.5`},
		{"unknown type", strings.Replace(validClassification, `"meeting_notes"`, `"memo"`, 1)},
		{"confidence above one", strings.Replace(validClassification, `"confidence": 0.92`, `"confidence": 1.5`, 1)},
		{"negative folder confidence", strings.Replace(validClassification, `"confidence": 0.8`, `"confidence": -0.1`, 1)},
		{"confidence as string", strings.Replace(validClassification, `0.92`, `"high"`, 1)},
		{"missing confidence", strings.Replace(validClassification, `"confidence": 0.92,`, ``, 1)},
		{"missing recommendation", `{"document_type":"report","confidence":0.5,"organization_insights":{"key_topics":[],"summary":"","tags":[]}}`},
		{"missing subfolders", strings.Replace(validClassification, `"subfolders": ["2026", " Q1 "],`, ``, 1)},
		{"blank subfolder", strings.Replace(validClassification, `"2026"`, `""`, 1)},
		{"blank folder name", strings.Replace(validClassification, `"Standups"`, `"   "`, 1)},
		{"missing insights summary", strings.Replace(validClassification, `"summary": "Weekly standup.",`, ``, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClassification(tt.raw)
			assert.Nil(t, got)
			var malformed *domain.MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, "classify_document", malformed.Operation)
			assert.Equal(t, tt.raw, malformed.Raw)
		})
	}
}

func TestDocumentClassifier_PromptCarriesContext(t *testing.T) {
	gen := &scriptedGenerator{text: validClassification}
	classifier := NewDocumentClassifier(gen, testPrompts(t), "claude-haiku-4-5", testLogger())

	doc := &docsys.Document{ID: "d1", Title: "Standup 3/2", Content: strings.Repeat("é", 9000)}
	_, err := classifier.Classify(context.Background(), doc, []string{"Team", "Team/Standups"})
	require.NoError(t, err)

	req := gen.last()
	assert.Equal(t, "claude-haiku-4-5", req.Model)
	assert.Contains(t, req.Prompt, "- Team/Standups")
	assert.Contains(t, req.Prompt, `"meeting_notes"`)
	assert.Equal(t, 8000, strings.Count(req.Prompt, "é"))
}

func TestDocumentClassifier_GeneratorError(t *testing.T) {
	classifier := NewDocumentClassifier(&scriptedGenerator{err: errUpstream}, testPrompts(t), "", testLogger())
	_, err := classifier.Classify(context.Background(), &docsys.Document{ID: "d1"}, nil)
	assert.ErrorIs(t, err, errUpstream)

	var malformed *domain.MalformedResponseError
	assert.False(t, errors.As(err, &malformed))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "héllo", truncateRunes("héllo", 10))
	assert.Equal(t, "héllo", truncateRunes("héllo", 0))
}
