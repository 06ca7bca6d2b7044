// Package detect builds the prompts for the category-chunk detection stage.
package detect

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for chunk detection.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt for chunk detection over the full
// source text.
func UserPrompt(sourceText string, meta catalog.FormMeta) string {
	var buf bytes.Buffer
	data := struct {
		Name       string
		Title      string
		SourceText string
	}{Name: meta.Name, Title: meta.Title, SourceText: sourceText}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}

// Result is the expected response shape for the detection stage.
type Result struct {
	Chunks []string `json:"chunks"`
}
