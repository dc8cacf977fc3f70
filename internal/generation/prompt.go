package generation

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template names understood by the PromptBuilder.
const (
	TemplateHint           = "hint"
	TemplateCardGeneration = "card-generation"
)

// System prompts sent alongside the rendered user prompt.
const (
	hintSystemPrompt = "You are a helpful tutor providing hints for flashcard review. " +
		"Your hints should guide the student towards the answer without revealing it directly. " +
		"Focus on connecting concepts and triggering recall through associated ideas."

	cardSystemPrompt = "You are an expert educator and flashcard creator. " +
		"You create high-quality flashcards that each focus on a single, clear concept, " +
		"with specific unambiguous questions and concise but complete answers."
)

// defaultHintTemplate guides the model away from echoing answer terms.
const defaultHintTemplate = `As a world-class instructor, create a helpful hint for a student studying with flashcards.
The student is looking at this question: "{{.Question}}"

Answer: "{{.Answer}}"

IMPORTANT RULES FOR HINT GENERATION:
1. NEVER use ANY words from the correct answer in your hint
2. NEVER reveal or suggest the exact terminology
3. Guide the student to discover the answer through analogies, everyday experiences, and the Socratic method

Additional guidelines:
- Keep the hint concise (2-3 sentences)
- Do NOT include any introductory text like "Here's a hint" - just output the hint directly
{{- if .PreviousHints}}

Previous hints given:
{{- range $i, $h := .PreviousHints}}
{{inc $i}}. {{$h}}
{{- end}}

Provide a new hint that builds upon these previous hints while giving additional context or connections.
{{- else}}

Provide a subtle hint that helps connect related concepts without directly revealing the answer.
{{- end}}`

// defaultCardTemplate asks for a bare JSON array so the parser's narrow
// bracket-trim repair has the best chance of succeeding.
const defaultCardTemplate = `Create {{.NumCards}} high-quality flashcards{{if .Topic}} about {{.Topic}}{{end}}.
Difficulty level: {{if .Difficulty}}{{.Difficulty}}{{else}}medium{{end}}

Guidelines:
1. Each card should focus on a single, clear concept
2. Questions should be specific and unambiguous
3. Answers should be concise but complete
4. Adjust complexity based on the specified difficulty level
5. Ensure factual accuracy

IMPORTANT: Respond with a valid JSON array of card objects. Each object must have "front" and "back" fields and may have a "tags" field.
Do not include any other text or formatting in your response.

Example response format:
[
  {"front": "What is X?", "back": "X is Y"}
]
{{- if .SourceText}}

Create the cards from this text:
{{.SourceText}}
{{- end}}`

// HintVars are the substitution variables for the hint template.
type HintVars struct {
	Question      string
	Answer        string
	PreviousHints []string
}

// CardVars are the substitution variables for the card-generation template.
type CardVars struct {
	Topic      string
	Difficulty string
	NumCards   int
	SourceText string
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// DefaultTemplate returns the hard-coded default text for the named
// template. It is a pure function: "reset to default" has no side effect
// beyond returning this text.
func DefaultTemplate(name string) (string, error) {
	switch name {
	case TemplateHint:
		return defaultHintTemplate, nil
	case TemplateCardGeneration:
		return defaultCardTemplate, nil
	default:
		return "", fmt.Errorf("%w: unknown template %q", ErrInvalidConfig, name)
	}
}

// PromptBuilder renders named prompt templates with substitution
// variables. Templates are user-overridable; the builder always falls
// back to the hard-coded defaults when no override is configured.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder parses the default templates, replacing them with the
// given overrides where present. An override that fails to parse is a
// configuration error, not a runtime fallback.
func NewPromptBuilder(overrides map[string]string) (*PromptBuilder, error) {
	b := &PromptBuilder{templates: make(map[string]*template.Template, 2)}

	for _, name := range []string{TemplateHint, TemplateCardGeneration} {
		text := ""
		if override, ok := overrides[name]; ok && override != "" {
			text = override
		} else {
			text, _ = DefaultTemplate(name)
		}

		tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse %q template: %v", ErrInvalidConfig, name, err)
		}
		b.templates[name] = tmpl
	}

	return b, nil
}

// Render executes the named template with the given variables. A missing
// variable or unknown template name is a programming error surfaced as
// an error return, never a user-facing failure.
func (b *PromptBuilder) Render(name string, vars any) (string, error) {
	tmpl, ok := b.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown template %q", ErrInvalidConfig, name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("%w: failed to render %q template: %v", ErrInvalidConfig, name, err)
	}

	return buf.String(), nil
}

// SystemPrompt returns the fixed system prompt paired with the named
// template.
func SystemPrompt(name string) string {
	if name == TemplateHint {
		return hintSystemPrompt
	}
	return cardSystemPrompt
}
