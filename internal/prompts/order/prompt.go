// Package order builds the prompts for the category-ordering stage.
package order

import (
	"bytes"
	"encoding/json"
	_ "embed"
	"text/template"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

//go:embed system.tmpl
var systemPrompt string

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// SystemPrompt returns the system prompt for category ordering.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user prompt from the surviving category names.
// Names are embedded as a JSON array so spellings survive round-tripping.
func UserPrompt(names []string, meta catalog.FormMeta) string {
	encoded, err := json.Marshal(names)
	if err != nil {
		encoded = []byte("[]")
	}

	var buf bytes.Buffer
	data := struct {
		Title string
		Names string
	}{Title: meta.Title, Names: string(encoded)}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return userPromptTmpl
	}
	return buf.String()
}
