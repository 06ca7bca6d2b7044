// Package pipeline implements the catalogue-generation pipeline: one
// detection pass over the source text, a concurrent structuring pass per
// detected chunk, a best-effort ordering pass, and final assembly.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/extract"
	"github.com/quicktalog/quicktalog/internal/images"
	"github.com/quicktalog/quicktalog/internal/prompts/detect"
	"github.com/quicktalog/quicktalog/internal/prompts/order"
	"github.com/quicktalog/quicktalog/internal/prompts/structure"
	"github.com/quicktalog/quicktalog/internal/providers"
)

// ErrNoValidCategories means every detected chunk failed structuring.
var ErrNoValidCategories = errors.New("no valid categories could be generated")

const defaultStructureConcurrency = 8

// Request is the input to one generation run.
type Request struct {
	SourceText     string
	Meta           catalog.FormMeta
	Source         catalog.Source
	GenerateImages bool
	CreatedBy      string
}

// Config holds the generator's collaborators.
type Config struct {
	LLM      providers.LLMClient
	Searcher images.Searcher // optional; nil disables enrichment
	Logger   *slog.Logger

	// StructureConcurrency caps the structuring fan-out (default 8).
	StructureConcurrency int
}

// Generator runs the catalogue-generation pipeline.
type Generator struct {
	llm         providers.LLMClient
	searcher    images.Searcher
	logger      *slog.Logger
	concurrency int
}

// New creates a Generator.
func New(cfg Config) *Generator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := cfg.StructureConcurrency
	if concurrency <= 0 {
		concurrency = defaultStructureConcurrency
	}
	return &Generator{
		llm:         cfg.LLM,
		searcher:    cfg.Searcher,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Generate runs the full pipeline and returns the assembled catalogue.
// Detection failures are fatal; per-chunk structuring failures drop that
// chunk only; ordering failures degrade to the structuring order.
func (g *Generator) Generate(ctx context.Context, req Request) (*catalog.Catalogue, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, fmt.Errorf("source text is empty")
	}

	chunks, err := g.detectChunks(ctx, req)
	if err != nil {
		return nil, err
	}

	categories := g.structureChunks(ctx, req, chunks)
	if len(categories) == 0 {
		return nil, ErrNoValidCategories
	}

	categories = g.orderCategories(ctx, req, categories)

	// Finalize: ordering is dense and zero-based regardless of what the
	// ordering stage produced.
	for i := range categories {
		categories[i].Order = i
	}

	if req.GenerateImages {
		images.Enrich(ctx, g.searcher, categories, g.logger)
	}

	return &catalog.Catalogue{
		Slug:      catalog.Slugify(req.Meta.Name),
		Name:      req.Meta.Name,
		Title:     req.Meta.Title,
		Currency:  req.Meta.Currency,
		Theme:     req.Meta.Theme,
		Subtitle:  req.Meta.Subtitle,
		Services:  categories,
		CreatedBy: req.CreatedBy,
		Source:    req.Source,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// detectChunks runs the detection stage over the entire source text. Any
// failure here is fatal: without chunks there is nothing to structure.
func (g *Generator) detectChunks(ctx context.Context, req Request) ([]string, error) {
	result, err := g.llm.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: detect.SystemPrompt()},
			{Role: "user", Content: detect.UserPrompt(req.SourceText, req.Meta)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("category detection failed: %w", err)
	}

	raw, err := extract.Object(result.Content)
	if err != nil {
		g.logger.Error("category detection returned no parsable JSON",
			"error", err,
			"response", snippet(result.Content))
		return nil, fmt.Errorf("category detection failed: %w", err)
	}

	var detected detect.Result
	if err := json.Unmarshal(raw, &detected); err != nil {
		return nil, fmt.Errorf("category detection failed: %w", err)
	}

	chunks := make([]string, 0, len(detected.Chunks))
	for _, chunk := range detected.Chunks {
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("category detection found no chunks")
	}
	return chunks, nil
}

// structureChunks fans out one structuring call per chunk, bounded by the
// configured concurrency. Each worker writes only to its own slot; failed
// chunks leave their slot nil and are compacted away afterwards.
func (g *Generator) structureChunks(ctx context.Context, req Request, chunks []string) []catalog.Category {
	fixedLayout := catalog.Layout("")
	if req.Source == catalog.SourceOCR {
		fixedLayout = catalog.LayoutVariant3
	}
	systemPrompt := structure.SystemPrompt(req.Meta, fixedLayout)

	slots := make([]*catalog.Category, len(chunks))
	sem := make(chan struct{}, g.concurrency)
	done := make(chan int, len(chunks))

	for i, chunk := range chunks {
		go func(i int, chunk string) {
			defer func() { done <- i }()

			sem <- struct{}{}
			defer func() { <-sem }()

			category, err := g.structureChunk(ctx, systemPrompt, chunk, req.Meta)
			if err != nil {
				g.logger.Warn("dropping chunk that failed structuring",
					"chunk_index", i,
					"error", err,
					"chunk", snippet(chunk))
				return
			}
			if fixedLayout != "" {
				category.Layout = fixedLayout
			}
			slots[i] = category
		}(i, chunk)
	}
	for range chunks {
		<-done
	}

	// Compact in chunk order, dropping case-insensitive duplicate names so
	// category names stay unique within the catalogue.
	seen := make(map[string]bool, len(chunks))
	categories := make([]catalog.Category, 0, len(chunks))
	for i, c := range slots {
		if c == nil {
			continue
		}
		key := strings.ToLower(c.Name)
		if seen[key] {
			g.logger.Warn("dropping duplicate category name",
				"chunk_index", i,
				"name", c.Name)
			continue
		}
		seen[key] = true
		categories = append(categories, *c)
	}
	return categories
}

// structureChunk converts one chunk into a schema-valid category.
func (g *Generator) structureChunk(ctx context.Context, systemPrompt, chunk string, meta catalog.FormMeta) (*catalog.Category, error) {
	result, err := g.llm.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: structure.UserPrompt(chunk, meta)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	raw, err := extract.Object(result.Content)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w (response: %s)", err, snippet(result.Content))
	}

	if err := catalog.ValidateCategoryJSON(raw); err != nil {
		return nil, err
	}

	var category catalog.Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return nil, fmt.Errorf("failed to decode category: %w", err)
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	return &category, nil
}

// orderCategories runs the ordering pass. The result is accepted only when
// it is a strict permutation of the surviving names: same length, every name
// known, no duplicates. Anything else falls back silently to the input
// order; ordering is a refinement, never a source of data loss.
func (g *Generator) orderCategories(ctx context.Context, req Request, categories []catalog.Category) []catalog.Category {
	if len(categories) < 2 {
		return categories
	}

	names := make([]string, len(categories))
	byName := make(map[string]int, len(categories))
	for i, c := range categories {
		names[i] = c.Name
		byName[c.Name] = i
	}

	result, err := g.llm.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "system", Content: order.SystemPrompt()},
			{Role: "user", Content: order.UserPrompt(names, req.Meta)},
		},
	})
	if err != nil {
		g.logger.Warn("ordering call failed, keeping original order", "error", err)
		return categories
	}

	raw, err := extract.Array(result.Content)
	if err != nil {
		g.logger.Warn("ordering response had no parsable array, keeping original order",
			"error", err,
			"response", snippet(result.Content))
		return categories
	}

	var ordered []string
	if err := json.Unmarshal(raw, &ordered); err != nil {
		g.logger.Warn("ordering response was not a string array, keeping original order", "error", err)
		return categories
	}

	if len(ordered) != len(categories) {
		g.logger.Warn("ordering returned wrong count, keeping original order",
			"want", len(categories),
			"got", len(ordered))
		return categories
	}

	reordered := make([]catalog.Category, 0, len(categories))
	used := make(map[string]bool, len(ordered))
	for _, name := range ordered {
		idx, ok := byName[name]
		if !ok {
			g.logger.Warn("ordering returned unknown name, keeping original order", "name", name)
			return categories
		}
		if used[name] {
			g.logger.Warn("ordering returned duplicate name, keeping original order", "name", name)
			return categories
		}
		used[name] = true
		reordered = append(reordered, categories[idx])
	}
	return reordered
}

// snippet truncates raw model output for log lines.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 300 {
		return s[:300] + "...[truncated]"
	}
	return s
}
