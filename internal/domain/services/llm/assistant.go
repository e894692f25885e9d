package llm

import (
	"context"

	"docassist/internal/domain/models"
	"docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
)

// TodoExtractor turns free text into validated todo candidates
type TodoExtractor interface {
	Extract(ctx context.Context, text string) ([]llm.ExtractedTodo, error)
}

// DocumentClassifier produces a schema-checked classification for a document.
// existingFolders are display paths offered to the model for reuse.
// Output that does not match the schema yields *domain.MalformedResponseError.
type DocumentClassifier interface {
	Classify(ctx context.Context, doc *docsystem.Document, existingFolders []string) (*llm.Classification, error)
}

// OrganizerService applies a classification: ensures the recommended folder exists
// and moves the document into it
type OrganizerService interface {
	Classify(ctx context.Context, caller *models.Caller, documentID string) (*llm.Classification, error)
	Organize(ctx context.Context, caller *models.Caller, documentID string) (*OrganizeResult, error)
}

// OrganizeResult reports where a document was placed
type OrganizeResult struct {
	Document       *docsystem.Document `json:"document"`
	Folder         *docsystem.Folder   `json:"folder"`
	Subfolders     []docsystem.Folder  `json:"subfolders"`
	Classification *llm.Classification `json:"classification"`
}

// ChatService runs the single-shot assistant conversation
type ChatService interface {
	ListMessages(ctx context.Context, caller *models.Caller, limit int) ([]llm.ChatMessage, error)
	SendMessage(ctx context.Context, caller *models.Caller, req *SendMessageRequest) (*ChatExchange, error)
	ClearHistory(ctx context.Context, caller *models.Caller) (int64, error)
}

// SendMessageRequest is a user chat message
type SendMessageRequest struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// ChatExchange is the stored user message and the assistant reply
type ChatExchange struct {
	UserMessage      *llm.ChatMessage `json:"user_message"`
	AssistantMessage *llm.ChatMessage `json:"assistant_message"`
}
