package extract

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestObjectRecoversEmbeddedJSON(t *testing.T) {
	original := map[string]any{
		"chunks": []any{"BREAKFAST\nEggs 5", "LUNCH\nSoup 6"},
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}

	wrappings := map[string]string{
		"bare":           string(raw),
		"fenced":         "```json\n" + string(raw) + "\n```",
		"fenced no lang": "```\n" + string(raw) + "\n```",
		"leading prose":  "Here is the result you asked for:\n" + string(raw),
		"trailing prose": string(raw) + "\nLet me know if you need anything else!",
		"both":           "Sure thing!\n```json\n" + string(raw) + "\n```\nDone.",
	}

	for name, input := range wrappings {
		t.Run(name, func(t *testing.T) {
			got, err := Object(input)
			if err != nil {
				t.Fatalf("Object failed: %v", err)
			}
			var decoded map[string]any
			if err := json.Unmarshal(got, &decoded); err != nil {
				t.Fatalf("extracted payload does not parse: %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Fatalf("round-trip mismatch: got %v want %v", decoded, original)
			}
		})
	}
}

func TestArrayRecoversEmbeddedJSON(t *testing.T) {
	input := "The order should be:\n```json\n[\"Lunch\", \"Breakfast\"]\n```"
	got, err := Array(input)
	if err != nil {
		t.Fatalf("Array failed: %v", err)
	}
	var names []string
	if err := json.Unmarshal(got, &names); err != nil {
		t.Fatalf("extracted payload does not parse: %v", err)
	}
	if len(names) != 2 || names[0] != "Lunch" || names[1] != "Breakfast" {
		t.Fatalf("unexpected array: %v", names)
	}
}

func TestObjectNoStructuredData(t *testing.T) {
	inputs := []string{
		"",
		"I could not find any categories in that text.",
		"only a closing brace } here",
		"[1, 2, 3]", // array, not object
	}
	for _, input := range inputs {
		if _, err := Object(input); !errors.Is(err, ErrNoStructuredData) {
			t.Fatalf("Object(%q): got %v, want ErrNoStructuredData", input, err)
		}
	}
}

func TestArrayNoStructuredData(t *testing.T) {
	if _, err := Array(`{"chunks": []}`); !errors.Is(err, ErrNoStructuredData) {
		t.Fatal("expected ErrNoStructuredData for object input in array mode")
	}
}

func TestObjectMalformedJSON(t *testing.T) {
	input := `{"name": "Breakfast", "items": [}`
	if _, err := Object(input); !errors.Is(err, ErrMalformedJSON) {
		t.Fatalf("got %v, want ErrMalformedJSON", err)
	}
}

func TestObjectUsesOutermostBraces(t *testing.T) {
	input := `prefix {"outer": {"inner": 1}} suffix`
	got, err := Object(input)
	if err != nil {
		t.Fatalf("Object failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("extracted payload does not parse: %v", err)
	}
	if _, ok := decoded["outer"]; !ok {
		t.Fatalf("outer object not recovered: %v", decoded)
	}
}
