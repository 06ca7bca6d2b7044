package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/providers"
)

// stage inspection keys off the system prompt so tests don't depend on exact
// user-prompt wording.
func stageOf(req *providers.ChatRequest) string {
	if len(req.Messages) == 0 {
		return ""
	}
	system := req.Messages[0].Content
	switch {
	case strings.Contains(system, "analysis engine"):
		return "detect"
	case strings.Contains(system, "structuring engine"):
		return "structure"
	case strings.Contains(system, "ordering engine"):
		return "order"
	}
	return ""
}

func userPrompt(req *providers.ChatRequest) string {
	if len(req.Messages) < 2 {
		return ""
	}
	return req.Messages[1].Content
}

func categoryJSON(name string, items ...string) string {
	var sb strings.Builder
	sb.WriteString(`{"name":"` + name + `","layout":"variant_3","items":[`)
	for i, item := range items {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"name":"` + item + `","description":"","price":5,"image":""}`)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

// scriptedClient builds a mock whose detect stage returns the given chunks
// and whose structure stage maps chunk text to a category response.
func scriptedClient(chunks []string, structured map[string]string, orderResponse string) *providers.MockClient {
	mock := providers.NewMockClient()
	mock.Respond = func(req *providers.ChatRequest) (string, error) {
		switch stageOf(req) {
		case "detect":
			var quoted []string
			for _, c := range chunks {
				quoted = append(quoted, fmt.Sprintf("%q", c))
			}
			return `{"chunks":[` + strings.Join(quoted, ",") + `]}`, nil
		case "structure":
			prompt := userPrompt(req)
			for chunk, resp := range structured {
				if strings.Contains(prompt, chunk) {
					if resp == "FAIL" {
						return "", errors.New("simulated structuring failure")
					}
					return resp, nil
				}
			}
			return "", errors.New("no script for chunk")
		case "order":
			if orderResponse == "FAIL" {
				return "", errors.New("simulated ordering failure")
			}
			return orderResponse, nil
		}
		return "", errors.New("unknown stage")
	}
	return mock
}

func testRequest() Request {
	return Request{
		SourceText: "BREAKFAST\nEggs 5\nToast 3\n\nLUNCH\nSoup 6",
		Meta: catalog.FormMeta{
			Name:     "Corner Cafe",
			Title:    "Menu",
			Currency: "EUR",
		},
		Source: catalog.SourceOCR,
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	// Scenario: two chunks structure cleanly and the ordering stage swaps them.
	mock := scriptedClient(
		[]string{"BREAKFAST\nEggs 5\nToast 3", "LUNCH\nSoup 6"},
		map[string]string{
			"BREAKFAST": categoryJSON("Breakfast", "Eggs", "Toast"),
			"LUNCH":     categoryJSON("Lunch", "Soup"),
		},
		`["Lunch","Breakfast"]`,
	)
	g := New(Config{LLM: mock})

	cat, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(cat.Services) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cat.Services))
	}
	if cat.Services[0].Name != "Lunch" || cat.Services[0].Order != 0 {
		t.Fatalf("first category: %+v", cat.Services[0])
	}
	if cat.Services[1].Name != "Breakfast" || cat.Services[1].Order != 1 {
		t.Fatalf("second category: %+v", cat.Services[1])
	}
	if len(cat.Services[1].Items) != 2 {
		t.Fatalf("breakfast items: %+v", cat.Services[1].Items)
	}
	if cat.Source != catalog.SourceOCR {
		t.Fatalf("source: %v", cat.Source)
	}
	if !strings.HasPrefix(cat.Slug, "corner-cafe-") {
		t.Fatalf("slug: %q", cat.Slug)
	}
}

func TestGenerateFanOutIndependence(t *testing.T) {
	// One failing chunk out of three must not abort the others.
	mock := scriptedClient(
		[]string{"STARTERS\nBread 2", "MAINS\nSteak 20", "DESSERTS\nCake 4"},
		map[string]string{
			"STARTERS": categoryJSON("Starters", "Bread"),
			"MAINS":    "FAIL",
			"DESSERTS": categoryJSON("Desserts", "Cake"),
		},
		`["Starters","Desserts"]`,
	)
	g := New(Config{LLM: mock})

	cat, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(cat.Services) != 2 {
		t.Fatalf("expected 2 surviving categories, got %d", len(cat.Services))
	}
	for i, c := range cat.Services {
		if c.Order != i {
			t.Fatalf("order not dense: %+v", cat.Services)
		}
		if c.Name == "Mains" {
			t.Fatal("failed chunk leaked into result")
		}
	}
}

func TestGenerateTotalFailure(t *testing.T) {
	mock := scriptedClient(
		[]string{"STARTERS\nBread 2", "MAINS\nSteak 20"},
		map[string]string{
			"STARTERS": "FAIL",
			"MAINS":    "FAIL",
		},
		`[]`,
	)
	g := New(Config{LLM: mock})

	_, err := g.Generate(context.Background(), testRequest())
	if !errors.Is(err, ErrNoValidCategories) {
		t.Fatalf("got %v, want ErrNoValidCategories", err)
	}
}

func TestGenerateDetectFailureIsFatal(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true
	mock.FailErr = providers.ErrRateLimited
	g := New(Config{LLM: mock})

	_, err := g.Generate(context.Background(), testRequest())
	if !errors.Is(err, providers.ErrRateLimited) {
		t.Fatalf("detect failure should propagate: got %v", err)
	}
}

func TestGenerateOrderingFallback(t *testing.T) {
	cases := map[string]string{
		"wrong length":   `["Breakfast"]`,
		"unknown name":   `["Brunch","Lunch"]`,
		"duplicate name": `["Lunch","Lunch"]`,
		"not json":       `the best order is breakfast first`,
		"call failed":    "FAIL",
	}

	for name, orderResp := range cases {
		t.Run(name, func(t *testing.T) {
			mock := scriptedClient(
				[]string{"BREAKFAST\nEggs 5", "LUNCH\nSoup 6"},
				map[string]string{
					"BREAKFAST": categoryJSON("Breakfast", "Eggs"),
					"LUNCH":     categoryJSON("Lunch", "Soup"),
				},
				orderResp,
			)
			g := New(Config{LLM: mock})

			cat, err := g.Generate(context.Background(), testRequest())
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			// Fallback preserves detection order with dense order values.
			if cat.Services[0].Name != "Breakfast" || cat.Services[1].Name != "Lunch" {
				t.Fatalf("fallback order wrong: %+v", cat.Services)
			}
			if cat.Services[0].Order != 0 || cat.Services[1].Order != 1 {
				t.Fatalf("order values wrong: %+v", cat.Services)
			}
		})
	}
}

func TestGenerateOrderingSuccessPermutation(t *testing.T) {
	mock := scriptedClient(
		[]string{"A\nx 1", "B\ny 2", "C\nz 3"},
		map[string]string{
			"A\nx 1": categoryJSON("Alpha", "x"),
			"B\ny 2": categoryJSON("Beta", "y"),
			"C\nz 3": categoryJSON("Gamma", "z"),
		},
		`["Gamma","Alpha","Beta"]`,
	)
	g := New(Config{LLM: mock})

	cat, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := []string{"Gamma", "Alpha", "Beta"}
	for i, c := range cat.Services {
		if c.Name != want[i] || c.Order != i {
			t.Fatalf("position %d: %+v", i, c)
		}
	}
}

func TestGenerateOCRPathPinsNoImageLayout(t *testing.T) {
	// Model claims variant_1; the OCR path overrides it.
	resp := strings.Replace(categoryJSON("Breakfast", "Eggs"), "variant_3", "variant_1", 1)
	mock := scriptedClient(
		[]string{"BREAKFAST\nEggs 5"},
		map[string]string{"BREAKFAST": resp},
		`["Breakfast"]`,
	)
	g := New(Config{LLM: mock})

	cat, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if cat.Services[0].Layout != catalog.LayoutVariant3 {
		t.Fatalf("layout: %v", cat.Services[0].Layout)
	}
}

func TestGenerateDuplicateCategoryNamesDeduped(t *testing.T) {
	mock := scriptedClient(
		[]string{"DRINKS\nCola 2", "BEVERAGES\nTea 1"},
		map[string]string{
			"DRINKS":    categoryJSON("Drinks", "Cola"),
			"BEVERAGES": categoryJSON("drinks", "Tea"),
		},
		`FAIL`,
	)
	g := New(Config{LLM: mock})

	cat, err := g.Generate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(cat.Services) != 1 || cat.Services[0].Name != "Drinks" {
		t.Fatalf("dedupe failed: %+v", cat.Services)
	}
}

func TestGenerateEmptySourceText(t *testing.T) {
	mock := providers.NewMockClient()
	g := New(Config{LLM: mock})

	req := testRequest()
	req.SourceText = "   "
	if _, err := g.Generate(context.Background(), req); err == nil {
		t.Fatal("expected error for empty source text")
	}
	if mock.RequestCount() != 0 {
		t.Fatalf("no upstream calls expected, got %d", mock.RequestCount())
	}
}
