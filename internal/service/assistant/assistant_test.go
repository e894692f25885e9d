package assistant

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"docassist/internal/domain/models"
	llmSvc "docassist/internal/domain/services/llm"

	"github.com/stretchr/testify/require"
)

var testCaller = &models.Caller{UserID: "user-1"}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testPrompts(t *testing.T) Prompts {
	t.Helper()
	prompts, err := LoadPrompts()
	require.NoError(t, err)
	return prompts
}

// scriptedGenerator answers every request with the same text or error and records requests
type scriptedGenerator struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []*llmSvc.TextRequest
}

func (g *scriptedGenerator) Generate(ctx context.Context, req *llmSvc.TextRequest) (*llmSvc.TextResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &llmSvc.TextResponse{Text: g.text, Model: "lorem-fast", InputTokens: 10, OutputTokens: 5}, nil
}

func (g *scriptedGenerator) last() *llmSvc.TextRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func TestLoadPrompts(t *testing.T) {
	prompts := testPrompts(t)
	for _, name := range []string{PromptExtractTodos, PromptClassifyDocument, PromptChat} {
		require.Contains(t, prompts, name)
		require.Positive(t, prompts[name].MaxTokens, name)
	}
}

func TestParsePrompts_MissingPrompt(t *testing.T) {
	_, err := ParsePrompts([]byte("chat:\n  system: hi\n  user: \"{{.Message}}\"\n"))
	require.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"bare", `[1,2]`, `[1,2]`, true},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`, true},
		{"prose around", "Here you go: [1] thanks", `[1]`, true},
		{"no payload", "nothing here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.raw, '[', ']')
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSendMessage_RejectsEmpty(t *testing.T) {
	svc := NewChatService(ChatRepositories{}, &scriptedGenerator{}, testPrompts(t), testLogger())
	_, err := svc.SendMessage(context.Background(), testCaller, &llmSvc.SendMessageRequest{Content: "   "})
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "cannot be blank"))
}

var errUpstream = errors.New("upstream unavailable")
