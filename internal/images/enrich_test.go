package images

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

// stubSearcher scripts results per query and counts calls.
type stubSearcher struct {
	mu      sync.Mutex
	results map[string]string
	fail    map[string]bool
	calls   []string
}

func (s *stubSearcher) Search(_ context.Context, query string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, query)
	s.mu.Unlock()

	if s.fail[query] {
		return "", fmt.Errorf("simulated lookup failure for %q", query)
	}
	if url, ok := s.results[query]; ok {
		return url, nil
	}
	return "https://img.example/" + query, nil
}

func (s *stubSearcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestEnrichFailureIsolation(t *testing.T) {
	searcher := &stubSearcher{
		results: map[string]string{
			"Eggs":  "https://img.example/eggs",
			"Toast": "https://img.example/toast",
		},
		fail: map[string]bool{"Soup": true},
	}

	categories := []catalog.Category{
		{
			Name:   "Breakfast",
			Layout: catalog.LayoutVariant1,
			Items: []catalog.Item{
				{Name: "Eggs", Price: 5},
				{Name: "Toast", Price: 3},
			},
		},
		{
			Name:   "Lunch",
			Layout: catalog.LayoutVariant2,
			Items: []catalog.Item{
				{Name: "Soup", Price: 6},
			},
		},
	}

	Enrich(context.Background(), searcher, categories, nil)

	if got := categories[0].Items[0].Image; got != "https://img.example/eggs" {
		t.Fatalf("eggs image: got %q", got)
	}
	if got := categories[0].Items[1].Image; got != "https://img.example/toast" {
		t.Fatalf("toast image: got %q", got)
	}
	if got := categories[1].Items[0].Image; got != "" {
		t.Fatalf("failed lookup should leave image empty, got %q", got)
	}
}

func TestEnrichSkipsNoImageLayout(t *testing.T) {
	searcher := &stubSearcher{}

	categories := []catalog.Category{
		{
			Name:   "Price List",
			Layout: catalog.LayoutVariant3,
			Items: []catalog.Item{
				{Name: "Haircut", Price: 20},
				{Name: "Shave", Price: 10},
			},
		},
	}

	Enrich(context.Background(), searcher, categories, nil)

	if n := searcher.callCount(); n != 0 {
		t.Fatalf("no-image layout triggered %d lookups", n)
	}
	for _, item := range categories[0].Items {
		if item.Image != "" {
			t.Fatalf("item %q unexpectedly has image %q", item.Name, item.Image)
		}
	}
}

func TestEnrichNilSearcherIsNoop(t *testing.T) {
	categories := []catalog.Category{
		{Name: "Breakfast", Layout: catalog.LayoutVariant1, Items: []catalog.Item{{Name: "Eggs"}}},
	}
	Enrich(context.Background(), nil, categories, nil)
	if categories[0].Items[0].Image != "" {
		t.Fatal("nil searcher should not set images")
	}
}
