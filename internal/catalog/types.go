// Package catalog defines the catalogue domain types shared across the
// generation pipeline, the HTTP layer, and the store.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Layout is the presentation variant for a category.
type Layout string

const (
	LayoutVariant1 Layout = "variant_1"
	LayoutVariant2 Layout = "variant_2"
	LayoutVariant3 Layout = "variant_3" // no item images
	LayoutVariant4 Layout = "variant_4"
)

// Valid reports whether the layout is one of the known variants.
func (l Layout) Valid() bool {
	switch l {
	case LayoutVariant1, LayoutVariant2, LayoutVariant3, LayoutVariant4:
		return true
	}
	return false
}

// UsesImages reports whether items in this layout carry an image.
func (l Layout) UsesImages() bool {
	return l != LayoutVariant3
}

// Source identifies which generation path produced a catalogue.
type Source string

const (
	SourceAI  Source = "ai"
	SourceOCR Source = "ocr"
)

// Item is a single entry within a category.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// Category is the canonical unit of pipeline output.
type Category struct {
	Name   string `json:"name"`
	Layout Layout `json:"layout"`
	Order  int    `json:"order"`
	Items  []Item `json:"items"`
}

// Validate checks the minimal structural requirements on a category and
// normalizes recoverable fields (unknown layout, negative prices).
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name is empty")
	}
	if len(c.Items) == 0 {
		return fmt.Errorf("category %q has no items", c.Name)
	}
	if !c.Layout.Valid() {
		c.Layout = LayoutVariant1
	}
	for i := range c.Items {
		if strings.TrimSpace(c.Items[i].Name) == "" {
			return fmt.Errorf("category %q: item %d has no name", c.Name, i)
		}
		if c.Items[i].Price < 0 {
			c.Items[i].Price = 0
		}
	}
	return nil
}

// FormMeta is the contextual metadata supplied with a generation request.
// It is passed through to every prompt unchanged.
type FormMeta struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
	Subtitle string `json:"subtitle"`
}

// Catalogue is the assembled document handed to the store as a single write.
type Catalogue struct {
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Title     string     `json:"title"`
	Currency  string     `json:"currency"`
	Theme     string     `json:"theme"`
	Subtitle  string     `json:"subtitle"`
	Services  []Category `json:"services"`
	CreatedBy string     `json:"created_by"`
	Source    Source     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
}

// Slugify derives a URL slug from a catalogue name. A short random suffix
// keeps slugs unique without a read-before-write against the store.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "catalogue"
	}
	return slug + "-" + uuid.New().String()[:8]
}
