// Package domain holds venue registry types and ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Venue is one physical location whose showtimes are ingested as a unit
type Venue struct {
	ID      uuid.UUID
	Name    string
	Slug    string
	Chain   string
	Address string
	City    string

	// Source names the scraping source responsible for this venue
	Source string

	// SourceRef is the source-specific handle for the venue, usually the
	// listing page url
	SourceRef string

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repo is the persistence surface for the venue registry
type Repo interface {
	// ListBySource returns active venues for source, ordered by slug.
	// The order is what makes run output stable across invocations
	ListBySource(ctx context.Context, source string) ([]Venue, error)

	// GetBySlug returns the venue with slug, or ErrorCodeNotFound
	GetBySlug(ctx context.Context, slug string) (*Venue, error)

	// Upsert inserts the venue or updates the existing row with its slug
	Upsert(ctx context.Context, v *Venue) error
}
