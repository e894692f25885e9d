package assistant

import (
	"context"
	"fmt"
	"testing"

	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	llmSvc "docassist/internal/domain/services/llm"
	"docassist/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChat(t *testing.T, gen *scriptedGenerator) (*memory.Store, llmSvc.ChatService) {
	t.Helper()
	store := memory.NewStore()
	repos := ChatRepositories{
		Chat:      store.Chat(),
		Folders:   store.Folders(),
		Documents: store.Documents(),
		Notes:     store.Notes(),
		Audio:     store.Audio(),
	}
	return store, NewChatService(repos, gen, testPrompts(t), testLogger())
}

func TestChat_SendMessage(t *testing.T) {
	gen := &scriptedGenerator{text: "You have one report in Work."}
	store, chat := newChat(t, gen)
	ctx := context.Background()

	folder, err := store.Folders().CreateIfNotExists(ctx, testCaller, nil, "Work")
	require.NoError(t, err)
	require.NoError(t, store.Documents().Create(ctx, testCaller, &docsys.Document{Title: "Q1 report", FolderID: &folder.ID}))
	require.NoError(t, store.Notes().Create(ctx, testCaller, &docsys.Note{Title: "Ideas"}))

	exchange, err := chat.SendMessage(ctx, testCaller, &llmSvc.SendMessageRequest{Content: " What do I have? "})
	require.NoError(t, err)
	assert.Equal(t, "What do I have?", exchange.UserMessage.Content)
	assert.Equal(t, llm.RoleAssistant, exchange.AssistantMessage.Role)
	assert.Equal(t, "You have one report in Work.", exchange.AssistantMessage.Content)
	assert.Equal(t, "lorem-fast", exchange.AssistantMessage.Metadata["model"])

	req := gen.last()
	assert.Contains(t, req.System, `"Q1 report" in Work`)
	assert.Contains(t, req.System, `"Ideas" in No folder`)
	assert.Contains(t, req.System, "Audio recordings (0):")
	assert.Empty(t, req.History)
	assert.Equal(t, "What do I have?", req.Prompt)

	// The next message replays the stored exchange
	_, err = chat.SendMessage(ctx, testCaller, &llmSvc.SendMessageRequest{Content: "Thanks", Model: "lorem-slow"})
	require.NoError(t, err)
	req = gen.last()
	require.Len(t, req.History, 2)
	assert.Equal(t, llm.RoleUser, req.History[0].Role)
	assert.Equal(t, "lorem-slow", req.Model)

	messages, err := chat.ListMessages(ctx, testCaller, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 4)
}

func TestChat_GenerationFailureKeepsUserMessage(t *testing.T) {
	gen := &scriptedGenerator{err: errUpstream}
	_, chat := newChat(t, gen)
	ctx := context.Background()

	_, err := chat.SendMessage(ctx, testCaller, &llmSvc.SendMessageRequest{Content: "hello"})
	require.ErrorIs(t, err, errUpstream)

	messages, err := chat.ListMessages(ctx, testCaller, 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, llm.RoleUser, messages[0].Role)
}

func TestChat_ContextIsCapped(t *testing.T) {
	gen := &scriptedGenerator{text: "ok"}
	store, chat := newChat(t, gen)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		require.NoError(t, store.Notes().Create(ctx, testCaller, &docsys.Note{Title: fmt.Sprintf("note %d", i)}))
	}

	_, err := chat.SendMessage(ctx, testCaller, &llmSvc.SendMessageRequest{Content: "list notes"})
	require.NoError(t, err)
	assert.Contains(t, gen.last().System, "Notes (30):")
	assert.Contains(t, gen.last().System, "... and 5 more")
}

func TestChat_ClearHistory(t *testing.T) {
	_, chat := newChat(t, &scriptedGenerator{text: "hi"})
	ctx := context.Background()

	_, err := chat.SendMessage(ctx, testCaller, &llmSvc.SendMessageRequest{Content: "hello"})
	require.NoError(t, err)

	removed, err := chat.ClearHistory(ctx, testCaller)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	messages, err := chat.ListMessages(ctx, testCaller, 10)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
