package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	"docassist/internal/domain/models/llm"
	llmSvc "docassist/internal/domain/services/llm"
)

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TodoExtractor implements llmSvc.TodoExtractor
type TodoExtractor struct {
	generator llmSvc.TextGenerator
	prompt    *Prompt
	model     string
	logger    *slog.Logger
	now       func() time.Time
}

// NewTodoExtractor creates an extractor that sends prompts to model ("" = generator default)
func NewTodoExtractor(generator llmSvc.TextGenerator, prompts Prompts, model string, logger *slog.Logger) *TodoExtractor {
	return &TodoExtractor{
		generator: generator,
		prompt:    prompts[PromptExtractTodos],
		model:     model,
		logger:    logger,
		now:       time.Now,
	}
}

var _ llmSvc.TodoExtractor = (*TodoExtractor)(nil)

// Extract asks the model for todos in text and returns the valid ones
func (e *TodoExtractor) Extract(ctx context.Context, text string) ([]llm.ExtractedTodo, error) {
	system, user, err := e.prompt.Render(struct {
		Today string
		Text  string
	}{
		Today: e.now().Format("2006-01-02"),
		Text:  text,
	})
	if err != nil {
		return nil, err
	}

	resp, err := e.generator.Generate(ctx, &llmSvc.TextRequest{
		System:      system,
		Prompt:      user,
		Model:       e.model,
		MaxTokens:   e.prompt.MaxTokens,
		Temperature: e.prompt.Temperature,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := parseExtractedTodos(resp.Text)
	if err != nil {
		e.logger.Error("malformed todo extraction response", "error", err, "raw", resp.Text)
		return nil, err
	}

	todos := FilterExtractedTodos(candidates)
	e.logger.Debug("todos extracted",
		"candidates", len(candidates),
		"accepted", len(todos),
		"model", resp.Model,
	)
	return todos, nil
}

// parseExtractedTodos decodes the model answer item by item. The answer may be a
// bare array or an object with a "todos" array. Items that do not decode are dropped.
func parseExtractedTodos(raw string) ([]llm.ExtractedTodo, error) {
	var items []json.RawMessage

	if payload, ok := extractJSON(raw, '[', ']'); ok && json.Unmarshal([]byte(payload), &items) == nil {
		return decodeTodoItems(items), nil
	}

	if payload, ok := extractJSON(raw, '{', '}'); ok {
		var wrapped struct {
			Todos []json.RawMessage `json:"todos"`
		}
		if json.Unmarshal([]byte(payload), &wrapped) == nil && wrapped.Todos != nil {
			return decodeTodoItems(wrapped.Todos), nil
		}
	}

	return nil, &domain.MalformedResponseError{
		Operation: "extract_todos",
		Reason:    "expected a JSON array of todos",
		Raw:       raw,
	}
}

// decodeTodoItems reads each item field by field so that a wrongly typed optional
// field only loses that field. An item whose title is not a string is dropped.
func decodeTodoItems(items []json.RawMessage) []llm.ExtractedTodo {
	out := make([]llm.ExtractedTodo, 0, len(items))
	for _, item := range items {
		var fields struct {
			Title       json.RawMessage `json:"title"`
			Description json.RawMessage `json:"description"`
			Priority    json.RawMessage `json:"priority"`
			DueDate     json.RawMessage `json:"due_date"`
		}
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}
		title := jsonString(fields.Title)
		if title == nil {
			continue
		}

		todo := llm.ExtractedTodo{
			Title:       *title,
			Description: jsonString(fields.Description),
			DueDate:     jsonString(fields.DueDate),
		}
		if p := jsonString(fields.Priority); p != nil {
			todo.Priority = *p
		}
		out = append(out, todo)
	}
	return out
}

// jsonString returns the value of a JSON string, or nil for null, absent or other types
func jsonString(raw json.RawMessage) *string {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// FilterExtractedTodos keeps candidates with a usable title and normalises the rest:
// titles are trimmed and must be 1..100 characters, unknown priorities become Medium,
// and a due date that is not a real YYYY-MM-DD date becomes nil.
func FilterExtractedTodos(candidates []llm.ExtractedTodo) []llm.ExtractedTodo {
	out := make([]llm.ExtractedTodo, 0, len(candidates))
	for _, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if title == "" || utf8.RuneCountInString(title) > config.MaxExtractedTodoTitleLength {
			continue
		}

		todo := llm.ExtractedTodo{
			Title:    title,
			Priority: c.Priority,
			DueDate:  normalizeDueDate(c.DueDate),
		}
		if !models.TodoPriority(todo.Priority).Valid() {
			todo.Priority = string(models.PriorityMedium)
		}
		if c.Description != nil {
			if d := strings.TrimSpace(*c.Description); d != "" {
				todo.Description = &d
			}
		}

		out = append(out, todo)
	}
	return out
}

func normalizeDueDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if !dueDatePattern.MatchString(s) {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil
	}
	return &s
}

