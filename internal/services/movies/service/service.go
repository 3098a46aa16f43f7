// Package service implements identity resolution of scraped listings
package service

import (
	"context"
	"fmt"

	"cartelera/internal/adapters/catalog/tmdb"
	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/movies/domain"
	"cartelera/internal/services/movies/match"
	negdomain "cartelera/internal/services/negcache/domain"
)

// Service resolves (listing, source url) pairs to canonical movies.
// It is safe for use by overlapping runs: every shared write goes through
// upsert-style repo operations
type Service struct {
	deps     modkit.Deps
	repo     repokit.Binder[domain.Repo]
	catalog  domain.Catalog
	negcache domain.NegativeCache
	budget   domain.CallBudget
	issues   domain.IssueRecorder

	// MaxCreditLookups is forwarded to the matcher; zero keeps the default
	MaxCreditLookups int
}

// Compile-time assertion: Service implements domain.Resolver
var _ domain.Resolver = (*Service)(nil)

// New constructs the resolver service
func New(
	deps modkit.Deps,
	repo repokit.Binder[domain.Repo],
	catalog domain.Catalog,
	negcache domain.NegativeCache,
	budget domain.CallBudget,
	issues domain.IssueRecorder,
) *Service {
	return &Service{
		deps:     deps,
		repo:     repo,
		catalog:  catalog,
		negcache: negcache,
		budget:   budget,
		issues:   issues,
	}
}

// Resolve implements the resolution algorithm:
// known binding -> negative cache -> budgeted catalog search -> match ->
// reuse-by-catalog-id or create -> bind.
//
// Catalog failures do not propagate as errors; they are recorded as
// severity-error issues and resolve to (none, catalogCalled=true) so venue
// processing continues. Database failures do propagate
func (s *Service) Resolve(ctx context.Context, in domain.ResolveInput) (domain.LookupResult, error) {
	log := logger.C(ctx)
	r := repokit.MustBind(s.repo, s.deps.PG)
	task := fmt.Sprintf("resolve (%s)", in.SourceName)

	// 1. Known binding: no catalog call, ever
	if in.SourceURL != "" {
		movie, err := r.GetBySource(ctx, in.SourceName, in.SourceURL)
		switch {
		case err == nil:
			return domain.LookupResult{Movie: movie}, nil
		case !perr.IsCode(err, perr.ErrorCodeNotFound):
			return domain.LookupResult{}, err
		}

		// 2. Negative cache: attempts++ and skip
		found, err := s.negcache.Touch(ctx, in.SourceURL)
		if err != nil {
			return domain.LookupResult{}, err
		}
		if found {
			log.Debug().Str("url", in.SourceURL).Msg("skipping lookup for known unfindable url")
			return domain.LookupResult{}, nil
		}
	}

	// 3. Budgeted catalog search, preferring the original title
	searchName := in.ListingName
	if in.Metadata != nil && in.Metadata.OriginalTitle != "" {
		searchName = in.Metadata.OriginalTitle
	}

	log.Info().Str("query", searchName).Str("listing", in.ListingName).Msg("searching catalog")
	if err := s.budget.Increment(ctx, match.BudgetService); err != nil {
		return domain.LookupResult{}, err
	}

	resp, err := s.catalog.SearchMovies(ctx, searchName, 0)
	if err != nil {
		log.Error().Err(err).Str("listing", in.ListingName).Msg("catalog search failed")
		s.issues.Error(ctx,
			"TMDB API Error",
			task,
			err.Error(),
			fmt.Sprintf("%+v", err),
			map[string]any{"movie_name": in.ListingName, "source_url": in.SourceURL},
		)
		return domain.LookupResult{CatalogCalled: true}, nil
	}

	// 4. Nothing found: memoize and stop
	if len(resp.Results) == 0 {
		log.Warn().Str("query", searchName).Msg("no catalog results")
		s.recordUnfindable(ctx, in, task, negdomain.ReasonNoResults)
		return domain.LookupResult{CatalogCalled: true}, nil
	}

	// 5. Match
	matcher := match.New(s.catalog, s.budget, s.issues, in.SourceName)
	matcher.MaxCreditLookups = s.MaxCreditLookups
	best := matcher.BestMatch(ctx, resp.Results, in.ListingName, in.Metadata)

	// 6. No acceptable match: memoize and stop
	if best == nil {
		s.recordUnfindable(ctx, in, task, negdomain.ReasonNoMatch)
		return domain.LookupResult{CatalogCalled: true}, nil
	}

	// 7. Reuse the existing movie with this catalog id
	existing, err := r.GetByTMDBID(ctx, best.ID)
	switch {
	case err == nil:
		if err := s.bind(ctx, r, existing, in); err != nil {
			return domain.LookupResult{}, err
		}
		return domain.LookupResult{Movie: existing, CatalogCalled: true}, nil
	case !perr.IsCode(err, perr.ErrorCodeNotFound):
		return domain.LookupResult{}, err
	}

	// 8. Create from the matched candidate
	movie := s.movieFromCandidate(ctx, best)
	if err := r.Create(ctx, movie); err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			// A concurrent run created it between steps 7 and 8; reuse theirs
			winner, err2 := r.GetByTMDBID(ctx, best.ID)
			if err2 != nil {
				return domain.LookupResult{}, err2
			}
			if err := s.bind(ctx, r, winner, in); err != nil {
				return domain.LookupResult{}, err
			}
			return domain.LookupResult{Movie: winner, CatalogCalled: true}, nil
		}
		return domain.LookupResult{}, err
	}
	if err := s.bind(ctx, r, movie, in); err != nil {
		return domain.LookupResult{}, err
	}

	log.Info().Str("slug", movie.Slug).Str("title", movie.Title).Msg("created movie")
	return domain.LookupResult{Movie: movie, IsNew: true, CatalogCalled: true}, nil
}

func (s *Service) bind(ctx context.Context, r domain.Repo, m *domain.Movie, in domain.ResolveInput) error {
	if in.SourceURL == "" {
		return nil
	}
	return r.Bind(ctx, m.ID, in.SourceName, in.SourceURL)
}

// recordUnfindable memoizes the url and writes the companion warning issue
func (s *Service) recordUnfindable(ctx context.Context, in domain.ResolveInput, task, reason string) {
	log := logger.C(ctx)
	origTitle := ""
	if in.Metadata != nil {
		origTitle = in.Metadata.OriginalTitle
	}

	if in.SourceURL != "" {
		if err := s.negcache.Record(ctx, in.SourceURL, in.ListingName, origTitle, reason); err != nil {
			log.Error().Err(err).Str("url", in.SourceURL).Msg("negative cache record failed")
		}
	}

	s.issues.Warn(ctx,
		"Unfindable Movie URL",
		task,
		fmt.Sprintf("could not match movie to TMDB: %s", in.ListingName),
		map[string]any{"movie_url": in.SourceURL, "reason": reason, "original_title": origTitle},
	)
}

// movieFromCandidate builds the new movie row. The extra details fetch is
// opportunistic: a failure only costs runtime and synopsis depth, never the
// resolution
func (s *Service) movieFromCandidate(ctx context.Context, cand *tmdb.SearchResult) *domain.Movie {
	log := logger.C(ctx)

	var year *int
	if _, y := match.ParseReleaseDate(cand.ReleaseDate); y != 0 {
		yy := y
		year = &yy
	}

	id := cand.ID
	rating := cand.VoteAverage
	m := &domain.Movie{
		Slug:          domain.Slug(cand.Title, valueOrZero(year)),
		Title:         cand.Title,
		OriginalTitle: cand.OriginalTitle,
		ReleaseYear:   year,
		Synopsis:      cand.Overview,
		TMDBID:        &id,
		Rating:        &rating,
		PosterURL:     s.catalog.PosterURL(cand.PosterPath, "w500"),
	}

	if err := s.budget.Increment(ctx, match.BudgetService); err != nil {
		log.Error().Err(err).Msg("call budget increment failed")
	}
	details, err := s.catalog.MovieDetails(ctx, cand.ID, false)
	if err != nil {
		log.Warn().Err(err).Int("tmdb_id", cand.ID).Msg("details fetch failed, creating from search data")
		return m
	}
	m.DurationMinutes = details.Runtime
	if details.Overview != "" {
		m.Synopsis = details.Overview
	}
	if p := s.catalog.PosterURL(details.PosterPath, "w500"); p != "" {
		m.PosterURL = p
	}
	return m
}

func valueOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
