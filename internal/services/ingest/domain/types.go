// Package domain holds the ingestion pipeline contract
package domain

import (
	"context"

	moviesdomain "cartelera/internal/services/movies/domain"
	venuesdomain "cartelera/internal/services/venues/domain"
)

// Listing is one movie as it appears on a source's page, before resolution
type Listing struct {
	Name      string
	SourceURL string
}

// Source is the strategy a concrete scraping integration implements.
// DiscoverListings and FetchMetadata talk to the source site; ExtractEvents
// turns listings plus resolved movies into the venue's persisted snapshot
type Source interface {
	// Name identifies the source; it keys venue configuration and bindings
	Name() string

	// DiscoverListings returns the movies currently showing at venue
	DiscoverListings(ctx context.Context, venue venuesdomain.Venue) ([]Listing, error)

	// FetchMetadata fetches source-side metadata for one listing.
	// A nil result with nil error means the source has none
	FetchMetadata(ctx context.Context, listing Listing) (*moviesdomain.Metadata, error)

	// ExtractEvents builds and persists the venue's events, resolving
	// listings to movies through cache. Returns the saved event count
	ExtractEvents(ctx context.Context, venue venuesdomain.Venue, listings []Listing, cache *EntityCache) (int, error)
}

// Summary reports one run
type Summary struct {
	TotalEvents  int
	CatalogCalls int
	NewMovies    []string
}

// EntityCache memoizes resolution results for one run, keyed by source url.
// A stored nil movie means the url resolved to nothing; the presence of the
// key is what suppresses a second lookup. Venues within a run share one
// cache so the same movie is resolved at most once per run
type EntityCache struct {
	movies map[string]*moviesdomain.Movie
}

// NewEntityCache returns an empty cache
func NewEntityCache() *EntityCache {
	return &EntityCache{movies: make(map[string]*moviesdomain.Movie)}
}

// Lookup returns the cached movie for url and whether the url was seen
func (c *EntityCache) Lookup(url string) (*moviesdomain.Movie, bool) {
	m, ok := c.movies[url]
	return m, ok
}

// Store records the resolution result for url, nil included
func (c *EntityCache) Store(url string, m *moviesdomain.Movie) {
	c.movies[url] = m
}

// Len returns the number of memoized urls
func (c *EntityCache) Len() int { return len(c.movies) }

// VenueDirectory is the venue registry surface the runner needs
type VenueDirectory interface {
	ListBySource(ctx context.Context, source string) ([]venuesdomain.Venue, error)
	GetBySlug(ctx context.Context, slug string) (*venuesdomain.Venue, error)
}
