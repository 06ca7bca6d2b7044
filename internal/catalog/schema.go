package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CategorySchema is the JSON schema a structured-category response must
// satisfy. It mirrors the shape the structuring prompt asks for.
var CategorySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"layout": map[string]any{
			"type": "string",
			"enum": []string{"variant_1", "variant_2", "variant_3", "variant_4"},
		},
		"items": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":        map[string]any{"type": "string", "minLength": 1},
					"description": map[string]any{"type": "string"},
					"price":       map[string]any{"type": "number"},
					"image":       map[string]any{"type": "string"},
				},
				"required": []string{"name", "price"},
			},
		},
	},
	"required": []string{"name", "items"},
}

var (
	categorySchemaOnce sync.Once
	categorySchema     *jsonschema.Schema
	categorySchemaErr  error
)

func compiledCategorySchema() (*jsonschema.Schema, error) {
	categorySchemaOnce.Do(func() {
		raw, err := json.Marshal(CategorySchema)
		if err != nil {
			categorySchemaErr = fmt.Errorf("failed to serialize category schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("category.json", bytes.NewReader(raw)); err != nil {
			categorySchemaErr = fmt.Errorf("failed to load category schema: %w", err)
			return
		}
		categorySchema, categorySchemaErr = compiler.Compile("category.json")
	})
	return categorySchema, categorySchemaErr
}

// ValidateCategoryJSON validates raw model output against CategorySchema
// before it is decoded into a Category.
func ValidateCategoryJSON(raw json.RawMessage) error {
	schema, err := compiledCategorySchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode category JSON for validation: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("category does not match schema: %w", err)
	}
	return nil
}
