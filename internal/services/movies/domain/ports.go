package domain

import (
	"context"

	"cartelera/internal/adapters/catalog/tmdb"

	"github.com/google/uuid"
)

// Repo is the persistence surface for movies and source bindings
type Repo interface {
	// GetBySource returns the movie bound to (source, url), or ErrorCodeNotFound
	GetBySource(ctx context.Context, source, url string) (*Movie, error)

	// GetByTMDBID returns the movie with the given catalog id, or ErrorCodeNotFound
	GetByTMDBID(ctx context.Context, tmdbID int) (*Movie, error)

	// GetBySlug returns the movie with the given slug, or ErrorCodeNotFound
	GetBySlug(ctx context.Context, slug string) (*Movie, error)

	// Create inserts a new movie row
	Create(ctx context.Context, m *Movie) error

	// Bind records (source, url) -> movie. Already-bound pairs are a no-op
	Bind(ctx context.Context, movieID uuid.UUID, source, url string) error
}

// Catalog is the external metadata service consumed by the resolver and matcher
type Catalog interface {
	SearchMovies(ctx context.Context, query string, year int) (tmdb.SearchResponse, error)
	MovieDetails(ctx context.Context, id int, includeCredits bool) (*tmdb.Details, error)
	PosterURL(posterPath *string, size string) string
}

// NegativeCache memoizes URLs that could not be resolved so later runs skip
// the catalog entirely
type NegativeCache interface {
	// Touch increments attempts/last-seen when url is cached; found reports presence
	Touch(ctx context.Context, url string) (found bool, err error)

	// Record inserts the entry or increments an existing one
	Record(ctx context.Context, url, title, originalTitle, reason string) error
}

// CallBudget tracks external calls per service per day
type CallBudget interface {
	Increment(ctx context.Context, service string) error
}

// IssueRecorder appends structured operational issues
type IssueRecorder interface {
	Warn(ctx context.Context, name, task, message string, context map[string]any)
	Error(ctx context.Context, name, task, message, trace string, context map[string]any)
}

// Resolver is the identity resolution port the ingest pipeline consumes
type Resolver interface {
	Resolve(ctx context.Context, in ResolveInput) (LookupResult, error)
}

// ResolveInput names one listing to resolve
type ResolveInput struct {
	ListingName string
	SourceURL   string
	SourceName  string
	Metadata    *Metadata
}
