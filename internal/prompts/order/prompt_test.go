package order

import (
	"strings"
	"testing"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

func TestSystemPrompt(t *testing.T) {
	system := SystemPrompt()
	if !strings.Contains(system, "same count") {
		t.Error("system prompt should require the exact name set")
	}
}

func TestUserPrompt(t *testing.T) {
	meta := catalog.FormMeta{Title: "Our Menu"}
	user := UserPrompt([]string{"Desserts", "Starters"}, meta)
	if !strings.Contains(user, `["Desserts","Starters"]`) {
		t.Errorf("user prompt should embed names as JSON, got: %s", user)
	}
	if !strings.Contains(user, "Our Menu") {
		t.Error("user prompt missing the catalogue title")
	}
}
