package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docassist/internal/domain"
	"docassist/internal/domain/models/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func TestFilterExtractedTodos(t *testing.T) {
	long := strings.Repeat("x", 101)
	exact := strings.Repeat("y", 100)

	tests := []struct {
		name string
		in   llm.ExtractedTodo
		want *llm.ExtractedTodo // nil = dropped
	}{
		{
			name: "valid item kept",
			in:   llm.ExtractedTodo{Title: "Send report", Priority: "High", DueDate: str("2026-03-15")},
			want: &llm.ExtractedTodo{Title: "Send report", Priority: "High", DueDate: str("2026-03-15")},
		},
		{
			name: "title trimmed",
			in:   llm.ExtractedTodo{Title: "  Call Bob \n", Priority: "Low"},
			want: &llm.ExtractedTodo{Title: "Call Bob", Priority: "Low"},
		},
		{name: "empty title dropped", in: llm.ExtractedTodo{Title: "", Priority: "High"}},
		{name: "blank title dropped", in: llm.ExtractedTodo{Title: "   ", Priority: "High"}},
		{name: "101 chars dropped", in: llm.ExtractedTodo{Title: long, Priority: "High"}},
		{
			name: "100 chars kept",
			in:   llm.ExtractedTodo{Title: exact, Priority: "Medium"},
			want: &llm.ExtractedTodo{Title: exact, Priority: "Medium"},
		},
		{
			name: "unknown priority becomes Medium",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "urgent"},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Medium"},
		},
		{
			name: "lowercase priority becomes Medium",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "high"},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Medium"},
		},
		{
			name: "missing priority becomes Medium",
			in:   llm.ExtractedTodo{Title: "Plan"},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Medium"},
		},
		{
			name: "wrong date format nulled",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "Low", DueDate: str("03/15/2026")},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Low"},
		},
		{
			name: "impossible date nulled",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "Low", DueDate: str("2026-02-30")},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Low"},
		},
		{
			name: "datetime nulled",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "Low", DueDate: str("2026-02-10T10:00:00Z")},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Low"},
		},
		{name: "empty string title dropped", in: llm.ExtractedTodo{Title: ""}},
		{name: "150 A title dropped", in: llm.ExtractedTodo{Title: strings.Repeat("A", 150)}},
		{
			name: "Valid task with Urgent priority and 2024-13-45",
			in:   llm.ExtractedTodo{Title: "Valid task", Priority: "Urgent", DueDate: str("2024-13-45")},
			want: &llm.ExtractedTodo{Title: "Valid task", Priority: "Medium"},
		},
		{
			name: "blank description dropped",
			in:   llm.ExtractedTodo{Title: "Plan", Priority: "Low", Description: str("  ")},
			want: &llm.ExtractedTodo{Title: "Plan", Priority: "Low"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterExtractedTodos([]llm.ExtractedTodo{tt.in})
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, *tt.want, got[0])
		})
	}
}

func TestFilterExtractedTodos_KeepsValidSubsetInOrder(t *testing.T) {
	got := FilterExtractedTodos([]llm.ExtractedTodo{
		{Title: "one", Priority: "High"},
		{Title: ""},
		{Title: "two", Priority: "nope"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Title)
	assert.Equal(t, "two", got[1].Title)
	assert.Equal(t, "Medium", got[1].Priority)
}

func TestParseExtractedTodos(t *testing.T) {
	t.Run("fenced array", func(t *testing.T) {
		got, err := parseExtractedTodos("```json\n[{\"title\":\"A\",\"priority\":\"High\",\"due_date\":null}]\n```")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "A", got[0].Title)
		assert.Nil(t, got[0].DueDate)
	})

	t.Run("null fields stay nil", func(t *testing.T) {
		got, err := parseExtractedTodos(`[{"title":"A","description":null,"due_date":null,"priority":null}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Description)
		assert.Nil(t, got[0].DueDate)
		assert.Empty(t, got[0].Priority)
	})

	t.Run("wrapped object", func(t *testing.T) {
		got, err := parseExtractedTodos(`{"todos":[{"title":"B"}]}`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "B", got[0].Title)
	})

	t.Run("wrongly typed fields", func(t *testing.T) {
		got, err := parseExtractedTodos(`[{"title":42},{"title":"C","due_date":20260101,"priority":3}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "C", got[0].Title)
		assert.Nil(t, got[0].DueDate)
		assert.Empty(t, got[0].Priority)
	})

	t.Run("empty array", func(t *testing.T) {
		got, err := parseExtractedTodos(`[]`)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("prose only", func(t *testing.T) {
		_, err := parseExtractedTodos("I could not find any tasks.")
		var malformed *domain.MalformedResponseError
		require.True(t, errors.As(err, &malformed))
		assert.Equal(t, "extract_todos", malformed.Operation)
	})
}

func TestTodoExtractor_Extract(t *testing.T) {
	gen := &scriptedGenerator{text: `[
		{"title": "Book venue", "description": "for the offsite", "priority": "High", "due_date": "2026-04-01"},
		{"title": "", "priority": "Low"},
		{"title": "Email team", "priority": "whenever", "due_date": "next week"}
	]`}
	extractor := NewTodoExtractor(gen, testPrompts(t), "lorem-fast", testLogger())
	extractor.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	todos, err := extractor.Extract(context.Background(), "We need to book a venue and email the team.")
	require.NoError(t, err)
	require.Len(t, todos, 2)

	assert.Equal(t, "Book venue", todos[0].Title)
	assert.Equal(t, "for the offsite", *todos[0].Description)
	assert.Equal(t, "2026-04-01", *todos[0].DueDate)
	assert.Equal(t, "Medium", todos[1].Priority)
	assert.Nil(t, todos[1].DueDate)

	req := gen.last()
	assert.Equal(t, "lorem-fast", req.Model)
	assert.Contains(t, req.Prompt, "Today is 2026-03-01")
	assert.Contains(t, req.Prompt, "book a venue")
}

func TestTodoExtractor_GeneratorError(t *testing.T) {
	extractor := NewTodoExtractor(&scriptedGenerator{err: errUpstream}, testPrompts(t), "", testLogger())
	_, err := extractor.Extract(context.Background(), "text")
	assert.ErrorIs(t, err, errUpstream)
}
