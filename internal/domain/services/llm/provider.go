package llm

import "context"

// TextGenerator is the contract shared by every integrated model provider:
// prompt in, text out. Quota, auth and network problems surface as errors.
type TextGenerator interface {
	Generate(ctx context.Context, req *TextRequest) (*TextResponse, error)
}

// TextRequest is a single-shot generation request
type TextRequest struct {
	System      string
	Prompt      string
	History     []Turn // prior conversation, oldest first
	Model       string // empty = provider default
	MaxTokens   int
	Temperature *float64
	TopP        *float64
}

// Turn is one prior message of a conversation
type Turn struct {
	Role string
	Text string
}

// TextResponse is the concatenated text output of a generation
type TextResponse struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}
