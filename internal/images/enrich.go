package images

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

// Enrich fetches one representative image per item for every category whose
// layout carries images. Lookups fan out concurrently; a failed lookup leaves
// that item's image empty and never fails the batch. Categories with the
// no-image layout are skipped entirely.
func Enrich(ctx context.Context, searcher Searcher, categories []catalog.Category, logger *slog.Logger) {
	if searcher == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	var wg sync.WaitGroup
	for ci := range categories {
		if !categories[ci].Layout.UsesImages() {
			continue
		}
		for ii := range categories[ci].Items {
			wg.Add(1)
			go func(item *catalog.Item, category string) {
				defer wg.Done()

				url, err := searcher.Search(ctx, item.Name)
				if err != nil {
					logger.Warn("image lookup failed, leaving item without image",
						"category", category,
						"item", item.Name,
						"error", err)
					item.Image = ""
					return
				}
				item.Image = url
			}(&categories[ci].Items[ii], categories[ci].Name)
		}
	}
	wg.Wait()
}
