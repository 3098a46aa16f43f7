// Package domain holds movie entity types and ports
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Movie is the canonical deduplicated record all listings resolve to
type Movie struct {
	ID              uuid.UUID
	Slug            string
	Title           string
	OriginalTitle   string
	ReleaseYear     *int
	DurationMinutes *int
	Synopsis        string
	TMDBID          *int
	Rating          *float64
	PosterURL       string
	CreatedAt       time.Time
}

// Year returns the release year or 0 when unknown
func (m *Movie) Year() int {
	if m == nil || m.ReleaseYear == nil {
		return 0
	}
	return *m.ReleaseYear
}

// Metadata is what a source could scrape about a listing beyond its name.
// Everything is optional; absence degrades matching, it never aborts it
type Metadata struct {
	Genre           string
	DurationMinutes *int
	Classification  string
	Director        string
	Actors          []string
	OriginalTitle   string
	ReleaseDate     *time.Time // day precision
	ReleaseYear     *int
}

// HasCredits reports whether the metadata carries a director or actor list
func (m *Metadata) HasCredits() bool {
	return m != nil && (m.Director != "" || len(m.Actors) > 0)
}

// Binding maps one scraped (source, url) pair to a movie
type Binding struct {
	ID        uuid.UUID
	MovieID   uuid.UUID
	Source    string
	URL       string
	CreatedAt time.Time
}

// LookupResult is the outcome of one identity resolution
type LookupResult struct {
	Movie         *Movie
	IsNew         bool
	CatalogCalled bool
}
