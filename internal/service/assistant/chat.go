package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain"
	"docassist/internal/domain/models"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	docsysRepo "docassist/internal/domain/repositories/docsystem"
	llmRepo "docassist/internal/domain/repositories/llm"
	llmSvc "docassist/internal/domain/services/llm"
	docsysService "docassist/internal/service/docsystem"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/errgroup"
)

// ChatRepositories groups the reads the chat context is assembled from
type ChatRepositories struct {
	Chat      llmRepo.ChatRepository
	Folders   docsysRepo.FolderRepository
	Documents docsysRepo.DocumentRepository
	Notes     docsysRepo.NoteRepository
	Audio     docsysRepo.AudioRepository
}

type chatService struct {
	repos     ChatRepositories
	generator llmSvc.TextGenerator
	prompt    *Prompt
	logger    *slog.Logger
}

// NewChatService creates the single-shot chat assistant
func NewChatService(repos ChatRepositories, generator llmSvc.TextGenerator, prompts Prompts, logger *slog.Logger) llmSvc.ChatService {
	return &chatService{
		repos:     repos,
		generator: generator,
		prompt:    prompts[PromptChat],
		logger:    logger,
	}
}

// ListMessages returns the most recent messages, oldest first
func (s *chatService) ListMessages(ctx context.Context, caller *models.Caller, limit int) ([]llm.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repos.Chat.ListRecent(ctx, caller, limit)
}

// SendMessage stores the user message, asks the model with the workspace as
// context and stores the reply. If generation fails the user message stays.
func (s *chatService) SendMessage(ctx context.Context, caller *models.Caller, req *llmSvc.SendMessageRequest) (*llmSvc.ChatExchange, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Content, validation.Required, validation.RuneLength(1, config.MaxChatMessageLength)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	history, err := s.repos.Chat.ListRecent(ctx, caller, config.ChatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}

	workspace, err := s.workspaceSummary(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("assemble chat context: %w", err)
	}

	userMsg := &llm.ChatMessage{
		UserID:    caller.UserID,
		Role:      llm.RoleUser,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.repos.Chat.Create(ctx, caller, userMsg); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}

	system, prompt, err := s.prompt.Render(struct {
		Workspace string
		Message   string
	}{
		Workspace: workspace,
		Message:   req.Content,
	})
	if err != nil {
		return nil, err
	}

	turns := make([]llmSvc.Turn, len(history))
	for i, m := range history {
		turns[i] = llmSvc.Turn{Role: m.Role, Text: m.Content}
	}

	resp, err := s.generator.Generate(ctx, &llmSvc.TextRequest{
		System:      system,
		Prompt:      prompt,
		History:     turns,
		Model:       req.Model,
		MaxTokens:   s.prompt.MaxTokens,
		Temperature: s.prompt.Temperature,
	})
	if err != nil {
		return nil, err
	}

	reply := &llm.ChatMessage{
		UserID:  caller.UserID,
		Role:    llm.RoleAssistant,
		Content: resp.Text,
		Metadata: map[string]interface{}{
			"model":         resp.Model,
			"input_tokens":  resp.InputTokens,
			"output_tokens": resp.OutputTokens,
			"stop_reason":   resp.StopReason,
			"history_size":  len(history),
		},
		CreatedAt: time.Now(),
	}
	if err := s.repos.Chat.Create(ctx, caller, reply); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}

	s.logger.Info("chat message answered",
		"user_id", caller.UserID,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
	)

	return &llmSvc.ChatExchange{UserMessage: userMsg, AssistantMessage: reply}, nil
}

// ClearHistory deletes every stored message of the caller
func (s *chatService) ClearHistory(ctx context.Context, caller *models.Caller) (int64, error) {
	removed, err := s.repos.Chat.DeleteAll(ctx, caller)
	if err != nil {
		return 0, fmt.Errorf("clear chat history: %w", err)
	}
	s.logger.Info("chat history cleared", "user_id", caller.UserID, "removed", removed)
	return removed, nil
}

// workspaceSummary reads folders and the three content kinds in parallel and
// renders them as a plain-text outline
func (s *chatService) workspaceSummary(ctx context.Context, caller *models.Caller) (string, error) {
	var (
		folders []docsys.Folder
		docs    []docsys.Document
		notes   []docsys.Note
		audio   []docsys.Audio
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		folders, err = s.repos.Folders.ListAll(gctx, caller)
		return err
	})
	g.Go(func() (err error) {
		docs, err = s.repos.Documents.List(gctx, caller, docsys.ContentFilter{})
		return err
	})
	g.Go(func() (err error) {
		notes, err = s.repos.Notes.List(gctx, caller, docsys.ContentFilter{})
		return err
	})
	g.Go(func() (err error) {
		audio, err = s.repos.Audio.List(gctx, caller, docsys.ContentFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	forest := docsysService.BuildForest(folders)
	var sb strings.Builder

	section(&sb, "Folders", len(folders), func(i int) string {
		return forest.ResolvePath(&folders[i].ID)
	})
	section(&sb, "Documents", len(docs), func(i int) string {
		line := fmt.Sprintf("%q in %s", docs[i].Title, forest.ResolvePath(docs[i].FolderID))
		if docs[i].DocumentType != nil {
			line += " (" + *docs[i].DocumentType + ")"
		}
		return line
	})
	section(&sb, "Notes", len(notes), func(i int) string {
		return fmt.Sprintf("%q in %s", notes[i].Title, forest.ResolvePath(notes[i].FolderID))
	})
	section(&sb, "Audio recordings", len(audio), func(i int) string {
		return fmt.Sprintf("%q in %s", audio[i].Title, forest.ResolvePath(audio[i].FolderID))
	})

	return strings.TrimSpace(sb.String()), nil
}

func section(sb *strings.Builder, title string, n int, line func(i int) string) {
	fmt.Fprintf(sb, "%s (%d):\n", title, n)
	if n == 0 {
		sb.WriteString("- none\n")
	}
	for i := 0; i < n && i < config.ChatContextItemLimit; i++ {
		sb.WriteString("- " + line(i) + "\n")
	}
	if n > config.ChatContextItemLimit {
		fmt.Fprintf(sb, "- ... and %d more\n", n-config.ChatContextItemLimit)
	}
	sb.WriteString("\n")
}
