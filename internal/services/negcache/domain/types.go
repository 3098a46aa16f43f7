// Package domain holds negative cache types and ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Failure reasons. The set is closed: operators filter on these values
const (
	ReasonNoResults          = "no_tmdb_results"
	ReasonNoMatch            = "no_match"
	ReasonNoMetadata         = "no_metadata"
	ReasonMissingReleaseDate = "missing_release_date"
)

// Entry memoizes one source url that could not be resolved.
// Attempts only grows; the row disappears only on operator reset
type Entry struct {
	ID            uuid.UUID
	URL           string
	Title         string
	OriginalTitle string
	Reason        string
	Attempts      int
	FirstSeen     time.Time
	LastSeen      time.Time
}

// Repo is the persistence surface for the negative cache
type Repo interface {
	// Touch increments attempts and last-seen if url is cached; found reports presence
	Touch(ctx context.Context, url string) (found bool, err error)

	// Record inserts the entry with attempts=1, or increments an existing one.
	// Concurrent recorders of the same url never create two rows
	Record(ctx context.Context, url, title, originalTitle, reason string) error

	// Get returns the entry for url, or ErrorCodeNotFound
	Get(ctx context.Context, url string) (*Entry, error)

	// List returns entries ordered by last-seen descending, with the total count
	List(ctx context.Context, limit, offset int) ([]Entry, int, error)

	// Delete removes the entry for url so the next run retries it.
	// Missing urls return ErrorCodeNotFound
	Delete(ctx context.Context, url string) error
}
