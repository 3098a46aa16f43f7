// Package service implements the ingestion run loop
package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"cartelera/internal/modkit"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/ingest/domain"
	moviesdomain "cartelera/internal/services/movies/domain"
	venuesdomain "cartelera/internal/services/venues/domain"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Runner drives one source through all of its venues.
//
// The venue loop is sequential and isolates failures: a venue that errors
// or panics is recorded and skipped, and its previously persisted snapshot
// stays untouched. The entity cache spans the whole run so a movie shared
// by several venues of a chain is resolved once
type Runner struct {
	deps     modkit.Deps
	resolver moviesdomain.Resolver
	venues   domain.VenueDirectory
	issues   moviesdomain.IssueRecorder

	// VenueTimeout bounds one venue's processing; zero disables the bound
	VenueTimeout time.Duration
}

// New constructs a Runner. The venue timeout comes from
// CORE_INGEST_VENUE_TIMEOUT when set
func New(deps modkit.Deps, resolver moviesdomain.Resolver, venues domain.VenueDirectory, issues moviesdomain.IssueRecorder) *Runner {
	return &Runner{
		deps:         deps,
		resolver:     resolver,
		venues:       venues,
		issues:       issues,
		VenueTimeout: deps.Cfg.Prefix("CORE_INGEST_").MayDuration("VENUE_TIMEOUT", 0),
	}
}

// Run processes every active venue of src and returns the run summary.
// The returned error covers only run-level failures such as the venue list
// query; per-venue failures are isolated and recorded as issues
func (r *Runner) Run(ctx context.Context, src domain.Source) (domain.Summary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID, src.Name())
	log := logger.C(ctx)

	venues, err := r.venues.ListBySource(ctx, src.Name())
	if err != nil {
		return domain.Summary{}, err
	}
	log.Info().Int("venues", len(venues)).Msg("ingestion run started")

	cache := domain.NewEntityCache()
	var summary domain.Summary

	for i := range venues {
		venue := venues[i]
		saved, err := r.guardVenue(ctx, src, venue, cache, &summary)
		if err != nil {
			r.recordVenueFailure(ctx, src, venue, err)
			continue
		}
		summary.TotalEvents += saved
	}

	log.Info().
		Int("events", summary.TotalEvents).
		Int("catalog_calls", summary.CatalogCalls).
		Int("new_movies", len(summary.NewMovies)).
		Msg("ingestion run finished")
	return summary, nil
}

// RunVenue processes a single venue by slug with a fresh cache. Errors
// propagate to the caller; targeted reruns want the failure, not an issue row
func (r *Runner) RunVenue(ctx context.Context, src domain.Source, slug string) (int, error) {
	ctx = logger.WithRun(ctx, uuid.NewString(), src.Name())

	venue, err := r.venues.GetBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}

	var summary domain.Summary
	return r.processVenue(ctx, src, *venue, domain.NewEntityCache(), &summary)
}

// guardVenue wraps processVenue with panic recovery so one venue's panic
// cannot take down the run
func (r *Runner) guardVenue(ctx context.Context, src domain.Source, venue venuesdomain.Venue, cache *domain.EntityCache, summary *domain.Summary) (saved int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return r.processVenue(ctx, src, venue, cache, summary)
}

func (r *Runner) processVenue(ctx context.Context, src domain.Source, venue venuesdomain.Venue, cache *domain.EntityCache, summary *domain.Summary) (int, error) {
	log := logger.C(ctx)

	if r.VenueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.VenueTimeout)
		defer cancel()
	}

	listings, err := src.DiscoverListings(ctx, venue)
	if err != nil {
		return 0, fmt.Errorf("discover listings: %w", err)
	}
	log.Info().Str("venue", venue.Slug).Int("listings", len(listings)).Msg("venue listings discovered")

	if err := r.resolveListings(ctx, src, listings, cache, summary); err != nil {
		return 0, err
	}

	saved, err := src.ExtractEvents(ctx, venue, listings, cache)
	if err != nil {
		return 0, fmt.Errorf("extract events: %w", err)
	}
	return saved, nil
}

// resolveListings fills cache for every listing not yet seen this run.
// Metadata fetch failures degrade to a nil-metadata resolve; resolver
// errors are database failures and abort the venue
func (r *Runner) resolveListings(ctx context.Context, src domain.Source, listings []domain.Listing, cache *domain.EntityCache, summary *domain.Summary) error {
	log := logger.C(ctx)

	for _, listing := range listings {
		if _, seen := cache.Lookup(listing.SourceURL); seen {
			continue
		}

		meta, err := src.FetchMetadata(ctx, listing)
		if err != nil {
			log.Warn().Err(err).Str("listing", listing.Name).Msg("metadata fetch failed, resolving without metadata")
			meta = nil
		}

		res, err := r.resolver.Resolve(ctx, moviesdomain.ResolveInput{
			ListingName: listing.Name,
			SourceURL:   listing.SourceURL,
			SourceName:  src.Name(),
			Metadata:    meta,
		})
		if err != nil {
			return fmt.Errorf("resolve %q: %w", listing.Name, err)
		}

		cache.Store(listing.SourceURL, res.Movie)
		if res.CatalogCalled {
			summary.CatalogCalls++
		}
		if res.IsNew && res.Movie != nil {
			summary.NewMovies = append(summary.NewMovies, res.Movie.Title)
		}
	}
	return nil
}

func (r *Runner) recordVenueFailure(ctx context.Context, src domain.Source, venue venuesdomain.Venue, err error) {
	logger.C(ctx).Error().Err(err).Str("venue", venue.Slug).Msg("venue processing failed")
	r.issues.Error(ctx,
		fmt.Sprintf("%s Venue Processing Failed", cases.Title(language.Und).String(src.Name())),
		fmt.Sprintf("ingest (%s)", src.Name()),
		err.Error(),
		fmt.Sprintf("%+v", err),
		map[string]any{"venue_name": venue.Name, "venue_slug": venue.Slug},
	)
}
