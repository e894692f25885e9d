package llm

import "time"

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one persisted entry of a user's assistant conversation
type ChatMessage struct {
	ID        string                 `json:"id" db:"id"`
	UserID    string                 `json:"user_id" db:"user_id"`
	Role      string                 `json:"role" db:"role"`
	Content   string                 `json:"content" db:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"` // model, token usage, context sizes
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}

// ExtractedTodo is a todo candidate produced by the model.
// DueDate is kept as text so that invalid formats can be detected and nulled.
type ExtractedTodo struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

// DocumentType is the fixed set of classification categories
type DocumentType string

const (
	DocTypeRequirements   DocumentType = "requirements"
	DocTypeUserStory      DocumentType = "user_story"
	DocTypeMeetingNotes   DocumentType = "meeting_notes"
	DocTypeRetrospective  DocumentType = "retrospective"
	DocTypeSprintPlanning DocumentType = "sprint_planning"
	DocTypeTechnicalSpec  DocumentType = "technical_spec"
	DocTypeReport         DocumentType = "report"
	DocTypeOther          DocumentType = "other"
)

// DocumentTypes lists every accepted DocumentType value
var DocumentTypes = []interface{}{
	DocTypeRequirements,
	DocTypeUserStory,
	DocTypeMeetingNotes,
	DocTypeRetrospective,
	DocTypeSprintPlanning,
	DocTypeTechnicalSpec,
	DocTypeReport,
	DocTypeOther,
}

// Classification is the single structured object returned by document classification
type Classification struct {
	DocumentType         DocumentType         `json:"document_type"`
	Confidence           float64              `json:"confidence"`
	FolderRecommendation FolderRecommendation `json:"folder_recommendation"`
	OrganizationInsights OrganizationInsights `json:"organization_insights"`
}

// FolderRecommendation describes where a classified document should live
type FolderRecommendation struct {
	Name       string   `json:"name"`
	ParentPath string   `json:"parent_path"` // "" = root; segments separated by "/"
	Subfolders []string `json:"subfolders"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// OrganizationInsights carries free-form hints about the document
type OrganizationInsights struct {
	KeyTopics []string `json:"key_topics"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
}
