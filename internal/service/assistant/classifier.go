package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"docassist/internal/config"
	"docassist/internal/domain"
	docsys "docassist/internal/domain/models/docsystem"
	"docassist/internal/domain/models/llm"
	llmSvc "docassist/internal/domain/services/llm"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const opClassify = "classify_document"

// DocumentClassifier implements llmSvc.DocumentClassifier
type DocumentClassifier struct {
	generator llmSvc.TextGenerator
	prompt    *Prompt
	model     string
	logger    *slog.Logger
}

// NewDocumentClassifier creates a classifier that sends prompts to model ("" = generator default)
func NewDocumentClassifier(generator llmSvc.TextGenerator, prompts Prompts, model string, logger *slog.Logger) *DocumentClassifier {
	return &DocumentClassifier{
		generator: generator,
		prompt:    prompts[PromptClassifyDocument],
		model:     model,
		logger:    logger,
	}
}

var _ llmSvc.DocumentClassifier = (*DocumentClassifier)(nil)

// Classify asks the model for a classification and checks it against the schema.
// Any mismatch is a *domain.MalformedResponseError; nothing is partially accepted.
func (c *DocumentClassifier) Classify(ctx context.Context, doc *docsys.Document, existingFolders []string) (*llm.Classification, error) {
	types := make([]string, len(llm.DocumentTypes))
	for i, t := range llm.DocumentTypes {
		types[i] = `"` + string(t.(llm.DocumentType)) + `"`
	}

	system, user, err := c.prompt.Render(struct {
		Folders []string
		Types   string
		Title   string
		Content string
	}{
		Folders: existingFolders,
		Types:   strings.Join(types, ", "),
		Title:   doc.Title,
		Content: truncateRunes(doc.Content, config.MaxClassificationContentLength),
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.generator.Generate(ctx, &llmSvc.TextRequest{
		System:      system,
		Prompt:      user,
		Model:       c.model,
		MaxTokens:   c.prompt.MaxTokens,
		Temperature: c.prompt.Temperature,
	})
	if err != nil {
		return nil, err
	}

	classification, err := ParseClassification(resp.Text)
	if err != nil {
		c.logger.Error("malformed classification response",
			"document_id", doc.ID,
			"error", err,
			"raw", resp.Text,
		)
		return nil, err
	}

	c.logger.Debug("document classified",
		"document_id", doc.ID,
		"document_type", classification.DocumentType,
		"confidence", classification.Confidence,
	)
	return classification, nil
}

// ParseClassification decodes and validates a model answer
func ParseClassification(raw string) (*llm.Classification, error) {
	payload, ok := extractJSON(raw, '{', '}')
	if !ok {
		return nil, malformed("no JSON object in response", raw)
	}

	var rc rawClassification
	if err := json.Unmarshal([]byte(payload), &rc); err != nil {
		return nil, malformed(err.Error(), raw)
	}
	if err := rc.Validate(); err != nil {
		return nil, malformed(err.Error(), raw)
	}

	fr := rc.FolderRecommendation
	oi := rc.OrganizationInsights
	out := &llm.Classification{
		DocumentType: *rc.DocumentType,
		Confidence:   *rc.Confidence,
		FolderRecommendation: llm.FolderRecommendation{
			Name:       strings.TrimSpace(*fr.Name),
			ParentPath: strings.Trim(strings.TrimSpace(*fr.ParentPath), "/"),
			Subfolders: trimAll(fr.Subfolders),
			Confidence: *fr.Confidence,
		},
		OrganizationInsights: llm.OrganizationInsights{
			KeyTopics: oi.KeyTopics,
			Summary:   *oi.Summary,
			Tags:      oi.Tags,
		},
	}
	if out.FolderRecommendation.Name == "" {
		return nil, malformed("folder_recommendation: name: cannot be blank.", raw)
	}
	if fr.Reasoning != nil {
		out.FolderRecommendation.Reasoning = *fr.Reasoning
	}
	return out, nil
}

func malformed(reason, raw string) error {
	return &domain.MalformedResponseError{Operation: opClassify, Reason: reason, Raw: raw}
}

// rawClassification mirrors llm.Classification with pointers so that absent
// fields can be told apart from zero values.
type rawClassification struct {
	DocumentType         *llm.DocumentType        `json:"document_type"`
	Confidence           *float64                 `json:"confidence"`
	FolderRecommendation *rawFolderRecommendation `json:"folder_recommendation"`
	OrganizationInsights *rawOrganizationInsights `json:"organization_insights"`
}

func (r rawClassification) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentType, validation.Required, validation.In(llm.DocumentTypes...)),
		validation.Field(&r.Confidence, validation.NotNil, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&r.FolderRecommendation, validation.NotNil),
		validation.Field(&r.OrganizationInsights, validation.NotNil),
	)
}

type rawFolderRecommendation struct {
	Name       *string  `json:"name"`
	ParentPath *string  `json:"parent_path"`
	Subfolders []string `json:"subfolders"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

func (r rawFolderRecommendation) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, config.MaxFolderNameLength)),
		validation.Field(&r.ParentPath, validation.NotNil, validation.RuneLength(0, config.MaxFolderPathLength)),
		validation.Field(&r.Subfolders, validation.NotNil,
			validation.Each(validation.Required, validation.RuneLength(1, config.MaxFolderNameLength))),
		validation.Field(&r.Confidence, validation.NotNil, validation.Min(0.0), validation.Max(1.0)),
	)
}

type rawOrganizationInsights struct {
	KeyTopics []string `json:"key_topics"`
	Summary   *string  `json:"summary"`
	Tags      []string `json:"tags"`
}

func (r rawOrganizationInsights) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.KeyTopics, validation.NotNil),
		validation.Field(&r.Summary, validation.NotNil),
		validation.Field(&r.Tags, validation.NotNil),
	)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}
