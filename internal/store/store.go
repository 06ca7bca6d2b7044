// Package store persists catalogues and usage events in Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quicktalog/quicktalog/internal/catalog"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("not found")

// UsageEvent records one billable generation against a user's quota.
type UsageEvent struct {
	UserID        string
	CatalogueSlug string
	Source        catalog.Source
	CreatedAt     time.Time
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to Postgres and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks database health.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `
create table if not exists catalogues (
  id         bigserial primary key,
  slug       text not null unique,
  name       text not null,
  title      text not null default '',
  currency   text not null default '',
  theme      text not null default '',
  subtitle   text not null default '',
  services   jsonb not null,
  created_by text not null default '',
  source     text not null,
  created_at timestamptz not null default now()
);

create table if not exists usage_events (
  id             bigserial primary key,
  user_id        text not null,
  catalogue_slug text not null,
  source         text not null,
  created_at     timestamptz not null default now()
);

create index if not exists usage_events_user_idx on usage_events (user_id, created_at);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// InsertCatalogue writes the assembled catalogue as a single row. The write
// is single-shot: no retries, no partial-write recovery.
func (s *Store) InsertCatalogue(ctx context.Context, c *catalog.Catalogue) error {
	services, err := json.Marshal(c.Services)
	if err != nil {
		return fmt.Errorf("failed to serialize services: %w", err)
	}

	const q = `
insert into catalogues (slug, name, title, currency, theme, subtitle, services, created_by, source, created_at)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err = s.pool.Exec(ctx, q,
		c.Slug, c.Name, c.Title, c.Currency, c.Theme, c.Subtitle,
		services, c.CreatedBy, string(c.Source), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert catalogue: %w", err)
	}
	return nil
}

// RecordUsage writes one usage event. It is independent of the catalogue
// insert; a failure here is reported to the caller but never undoes the
// catalogue write.
func (s *Store) RecordUsage(ctx context.Context, ev UsageEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	const q = `
insert into usage_events (user_id, catalogue_slug, source, created_at)
values ($1,$2,$3,$4)`
	if _, err := s.pool.Exec(ctx, q, ev.UserID, ev.CatalogueSlug, string(ev.Source), ev.CreatedAt); err != nil {
		return fmt.Errorf("failed to record usage event: %w", err)
	}
	return nil
}

// GetBySlug loads a catalogue by its slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (*catalog.Catalogue, error) {
	const q = `
select slug, name, title, currency, theme, subtitle, services, created_by, source, created_at
from catalogues where slug = $1`
	row := s.pool.QueryRow(ctx, q, slug)

	c, err := scanCatalogue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// ListByOwner returns the catalogues created by a user, newest first.
func (s *Store) ListByOwner(ctx context.Context, userID string) ([]*catalog.Catalogue, error) {
	const q = `
select slug, name, title, currency, theme, subtitle, services, created_by, source, created_at
from catalogues where created_by = $1 order by created_at desc`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalogues: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Catalogue
	for rows.Next() {
		c, err := scanCatalogue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCatalogue(row pgx.Row) (*catalog.Catalogue, error) {
	var (
		c        catalog.Catalogue
		services []byte
		source   string
	)
	if err := row.Scan(&c.Slug, &c.Name, &c.Title, &c.Currency, &c.Theme, &c.Subtitle,
		&services, &c.CreatedBy, &source, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(services, &c.Services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	c.Source = catalog.Source(source)
	return &c, nil
}
