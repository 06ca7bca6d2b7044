// Package svcctx provides service context for dependency injection via
// context. This package is separate from server to avoid import cycles with
// endpoints.
package svcctx

import (
	"context"
	"log/slog"

	"github.com/quicktalog/quicktalog/internal/auth"
	"github.com/quicktalog/quicktalog/internal/catalog"
	"github.com/quicktalog/quicktalog/internal/pipeline"
	"github.com/quicktalog/quicktalog/internal/store"
)

// CatalogueStore is the persistence surface endpoints depend on.
type CatalogueStore interface {
	InsertCatalogue(ctx context.Context, c *catalog.Catalogue) error
	RecordUsage(ctx context.Context, ev store.UsageEvent) error
	GetBySlug(ctx context.Context, slug string) (*catalog.Catalogue, error)
	ListByOwner(ctx context.Context, userID string) ([]*catalog.Catalogue, error)
	Ping(ctx context.Context) error
}

// CatalogueGenerator runs one catalogue-generation request.
type CatalogueGenerator interface {
	Generate(ctx context.Context, req pipeline.Request) (*catalog.Catalogue, error)
}

// Services holds all core services that flow through context.
type Services struct {
	Store     CatalogueStore
	Generator CatalogueGenerator
	Verifier  auth.Verifier
	Logger    *slog.Logger

	// PublicBaseURL is the origin used to build published catalogue URLs.
	PublicBaseURL string
}

type servicesKey struct{}

// WithServices returns a new context with services attached.
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey{}, s)
}

// ServicesFrom extracts the full Services struct from context.
// Returns nil if not present.
func ServicesFrom(ctx context.Context) *Services {
	s, _ := ctx.Value(servicesKey{}).(*Services)
	return s
}

// StoreFrom extracts the catalogue store from context.
func StoreFrom(ctx context.Context) CatalogueStore {
	if s := ServicesFrom(ctx); s != nil {
		return s.Store
	}
	return nil
}

// GeneratorFrom extracts the generator from context.
func GeneratorFrom(ctx context.Context) CatalogueGenerator {
	if s := ServicesFrom(ctx); s != nil {
		return s.Generator
	}
	return nil
}

// VerifierFrom extracts the auth verifier from context.
func VerifierFrom(ctx context.Context) auth.Verifier {
	if s := ServicesFrom(ctx); s != nil {
		return s.Verifier
	}
	return nil
}

// LoggerFrom extracts the logger from context.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if s := ServicesFrom(ctx); s != nil && s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// PublicBaseURLFrom extracts the public base URL from context.
func PublicBaseURLFrom(ctx context.Context) string {
	if s := ServicesFrom(ctx); s != nil {
		return s.PublicBaseURL
	}
	return ""
}
