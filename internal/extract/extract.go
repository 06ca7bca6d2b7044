// Package extract recovers JSON payloads from free-form language-model
// output. Model responses routinely wrap valid JSON in markdown fences or
// surrounding prose; the first/last-delimiter slice handles both without
// trying to fully parse the noise around the payload.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Shape selects the expected top-level JSON structure.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

var (
	// ErrNoStructuredData means no balanced delimiter pair was found.
	ErrNoStructuredData = errors.New("no structured data found in response")

	// ErrMalformedJSON means a candidate slice was found but did not parse.
	ErrMalformedJSON = errors.New("malformed JSON in response")
)

// Object extracts the outermost JSON object from raw model output.
func Object(raw string) (json.RawMessage, error) {
	return extract(raw, ShapeObject)
}

// Array extracts the outermost JSON array from raw model output.
func Array(raw string) (json.RawMessage, error) {
	return extract(raw, ShapeArray)
}

func extract(raw string, shape Shape) (json.RawMessage, error) {
	content := stripCodeFences(strings.TrimSpace(raw))
	if content == "" {
		return nil, ErrNoStructuredData
	}

	open, close := "{", "}"
	if shape == ShapeArray {
		open, close = "[", "]"
	}

	start := strings.Index(content, open)
	if start < 0 {
		return nil, ErrNoStructuredData
	}
	end := strings.LastIndex(content, close)
	if end < start {
		return nil, ErrNoStructuredData
	}

	candidate := content[start : end+1]
	var parsed any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	// Normalize so callers get canonical JSON regardless of surrounding noise.
	normalized, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return normalized, nil
}

// stripCodeFences removes a leading ```lang fence and its closing fence.
// Returns the input unchanged when it is not fenced.
func stripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
