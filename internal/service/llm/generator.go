package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainllm "docassist/internal/domain/services/llm"

	llmprovider "github.com/haowjy/meridian-llm-go"
)

const (
	blockTypeText    = "text"
	defaultMaxTokens = 2048
)

// Generator routes single-shot text requests to a provider chosen from the model string.
// It implements domainllm.TextGenerator.
type Generator struct {
	registry        *ProviderRegistry
	defaultProvider string
	defaultModel    string
	logger          *slog.Logger
}

// NewGenerator creates a generator whose requests without a model go to
// defaultProvider/defaultModel.
func NewGenerator(registry *ProviderRegistry, defaultProvider, defaultModel string, logger *slog.Logger) *Generator {
	return &Generator{
		registry:        registry,
		defaultProvider: defaultProvider,
		defaultModel:    defaultModel,
		logger:          logger,
	}
}

var _ domainllm.TextGenerator = (*Generator)(nil)

// Generate sends req to the resolved provider and concatenates its text blocks
func (g *Generator) Generate(ctx context.Context, req *domainllm.TextRequest) (*domainllm.TextResponse, error) {
	info, err := g.resolve(req.Model)
	if err != nil {
		return nil, err
	}

	provider, err := g.registry.GetProvider(info.Provider)
	if err != nil {
		return nil, err
	}

	libReq := buildLibraryRequest(req, info.Model)
	resp, err := provider.GenerateResponse(ctx, libReq)
	if err != nil {
		g.logger.Error("llm generation failed", "provider", info.Provider, "model", info.Model, "error", err)
		return nil, fmt.Errorf("generate with %s: %w", info.Provider, err)
	}

	out := convertLibraryResponse(resp)
	if out.Model == "" {
		out.Model = info.Model
	}

	g.logger.Debug("llm generation finished",
		"provider", info.Provider,
		"model", out.Model,
		"input_tokens", out.InputTokens,
		"output_tokens", out.OutputTokens,
		"stop_reason", out.StopReason,
	)

	return out, nil
}

// resolve picks provider and model; an empty model uses the configured defaults
func (g *Generator) resolve(model string) (*ModelInfo, error) {
	if strings.TrimSpace(model) == "" {
		return &ModelInfo{Provider: g.defaultProvider, Model: g.defaultModel}, nil
	}
	return ParseModel(model)
}

// buildLibraryRequest converts a TextRequest into the provider library's request.
// History turns come first, then the prompt as the final user message.
func buildLibraryRequest(req *domainllm.TextRequest, model string) *llmprovider.GenerateRequest {
	messages := make([]llmprovider.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		messages = append(messages, textMessage(turn.Role, turn.Text))
	}
	messages = append(messages, textMessage("user", req.Prompt))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := &llmprovider.RequestParams{
		MaxTokens:   &maxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.System != "" {
		system := req.System
		params.System = &system
	}

	return &llmprovider.GenerateRequest{
		Messages: messages,
		Model:    model,
		Params:   params,
	}
}

func textMessage(role, text string) llmprovider.Message {
	content := text
	return llmprovider.Message{
		Role: role,
		Blocks: []*llmprovider.Block{{
			BlockType:   blockTypeText,
			Sequence:    0,
			TextContent: &content,
		}},
	}
}

// convertLibraryResponse joins the text blocks, skipping every other block type
func convertLibraryResponse(resp *llmprovider.GenerateResponse) *domainllm.TextResponse {
	var sb strings.Builder
	for _, block := range resp.Blocks {
		if block.BlockType != blockTypeText || block.TextContent == nil {
			continue
		}
		sb.WriteString(*block.TextContent)
	}

	return &domainllm.TextResponse{
		Text:         sb.String(),
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		StopReason:   resp.StopReason,
	}
}
