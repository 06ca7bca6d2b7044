// Package structure builds the prompts for the per-chunk structuring stage.
//
// The prompt deliberately does not ask the model for an "order" field: final
// ordering is owned entirely by the ordering stage, so a model-chosen value
// would be overwritten anyway.
package structure

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

//go:embed system.tmpl
var systemPromptTmpl string

//go:embed user.tmpl
var userPromptTmpl string

var (
	systemTemplate = template.Must(template.New("system").Parse(systemPromptTmpl))
	userTemplate   = template.Must(template.New("user").Parse(userPromptTmpl))
)

// SystemPrompt builds the system prompt. fixedLayout pins the layout choice
// (OCR path pins variant_3); the empty string lets the model choose.
func SystemPrompt(meta catalog.FormMeta, fixedLayout catalog.Layout) string {
	var buf bytes.Buffer
	data := struct {
		Currency    string
		FixedLayout string
	}{Currency: meta.Currency, FixedLayout: string(fixedLayout)}
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return systemPromptTmpl
	}
	return buf.String()
}

// UserPrompt builds the user prompt for one category chunk.
func UserPrompt(chunk string, meta catalog.FormMeta) string {
	var buf bytes.Buffer
	data := struct {
		Name  string
		Title string
		Theme string
		Chunk string
	}{Name: meta.Name, Title: meta.Title, Theme: meta.Theme, Chunk: chunk}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
