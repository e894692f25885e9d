// Package assistant implements the model-backed features: todo extraction,
// document classification and organisation, and the chat assistant.
package assistant

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompt names
const (
	PromptExtractTodos     = "extract_todos"
	PromptClassifyDocument = "classify_document"
	PromptChat             = "chat"
)

// Prompt is one system/user template pair with its generation settings
type Prompt struct {
	System      string   `yaml:"system"`
	User        string   `yaml:"user"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`

	system *template.Template
	user   *template.Template
}

// Prompts is the parsed prompt catalogue
type Prompts map[string]*Prompt

// LoadPrompts parses the embedded catalogue
func LoadPrompts() (Prompts, error) {
	return ParsePrompts(promptsYAML)
}

// ParsePrompts parses a YAML catalogue and compiles every template
func ParsePrompts(data []byte) (Prompts, error) {
	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	for name, p := range prompts {
		var err error
		if p.system, err = template.New(name + ".system").Option("missingkey=error").Parse(p.System); err != nil {
			return nil, fmt.Errorf("prompt %s system: %w", name, err)
		}
		if p.user, err = template.New(name + ".user").Option("missingkey=error").Parse(p.User); err != nil {
			return nil, fmt.Errorf("prompt %s user: %w", name, err)
		}
	}

	for _, required := range []string{PromptExtractTodos, PromptClassifyDocument, PromptChat} {
		if _, ok := prompts[required]; !ok {
			return nil, fmt.Errorf("prompt %q missing", required)
		}
	}

	return prompts, nil
}

// Render executes both templates against data
func (p *Prompt) Render(data interface{}) (system, user string, err error) {
	var sb strings.Builder
	if err := p.system.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render system prompt: %w", err)
	}
	system = strings.TrimSpace(sb.String())

	sb.Reset()
	if err := p.user.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render user prompt: %w", err)
	}
	return system, strings.TrimSpace(sb.String()), nil
}
