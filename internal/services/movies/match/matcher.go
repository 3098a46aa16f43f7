// Package match selects the best catalog candidate for a scraped listing
package match

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cartelera/internal/adapters/catalog/tmdb"
	"cartelera/internal/core/normalize"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/movies/domain"
)

// Scoring constants. The weights are load-bearing: resolution results are
// only reproducible across runs if these stay fixed
const (
	scoreSameYear      = 100
	scoreAdjacentYear  = 50
	scoreYearMismatch  = -50
	scoreTitleExact    = 30
	scoreTitlePartial  = 15
	scoreOrigExact     = 20
	scoreOrigPartial   = 10
	scoreDirectorMatch = 150
	scorePerActor      = 30
	scoreActorCap      = 90

	positionBonusBase = 10
	castCompareLimit  = 15

	// DefaultMaxCreditLookups caps how many leading candidates get a
	// credits detail call
	DefaultMaxCreditLookups = 5
)

// BudgetService is the counter key used for catalog detail calls
const BudgetService = "tmdb"

// Matcher scores candidates against a listing plus optional metadata.
// Candidates are evaluated in the catalog's returned order
type Matcher struct {
	catalog domain.Catalog
	budget  domain.CallBudget
	issues  domain.IssueRecorder
	norm    *normalize.Normalizer

	// MaxCreditLookups bounds detail calls per match; zero means the default
	MaxCreditLookups int

	// SourceName labels issues with the scraping source being matched
	SourceName string
}

// New constructs a Matcher
func New(catalog domain.Catalog, budget domain.CallBudget, issues domain.IssueRecorder, source string) *Matcher {
	return &Matcher{
		catalog:          catalog,
		budget:           budget,
		issues:           issues,
		norm:             normalize.New(),
		MaxCreditLookups: DefaultMaxCreditLookups,
		SourceName:       source,
	}
}

// BestMatch returns the winning candidate or nil.
//
// A candidate whose parsed release date equals the metadata's day-precision
// release date wins immediately, regardless of anything scored before or
// after it. Otherwise a single left-to-right scan accumulates scores and
// keeps the first candidate to reach the strictly highest score: ties keep
// the earliest-seen
func (m *Matcher) BestMatch(ctx context.Context, candidates []tmdb.SearchResult, listingName string, meta *domain.Metadata) *tmdb.SearchResult {
	log := logger.C(ctx)
	if len(candidates) == 0 {
		return nil
	}

	if meta == nil {
		log.Info().Str("listing", listingName).Msg("no metadata, using first catalog result")
		m.issues.Warn(ctx,
			fmt.Sprintf("No %s Metadata", m.SourceName),
			"match",
			fmt.Sprintf("could not extract metadata from %s for %q", m.SourceName, listingName),
			map[string]any{"movie_name": listingName},
		)
		return &candidates[0]
	}

	sourceDate := meta.ReleaseDate
	sourceYear := 0
	if meta.ReleaseYear != nil {
		sourceYear = *meta.ReleaseYear
	}

	if sourceYear == 0 {
		log.Warn().Str("listing", listingName).Msg("metadata has no release year")
		m.issues.Warn(ctx,
			fmt.Sprintf("Missing %s Release Date", m.SourceName),
			"match",
			fmt.Sprintf("could not get release date from %s for %q", m.SourceName, listingName),
			map[string]any{
				"movie_name": listingName,
				"genre":      meta.Genre,
				"director":   meta.Director,
			},
		)
	}

	maxCredit := m.MaxCreditLookups
	if maxCredit <= 0 {
		maxCredit = DefaultMaxCreditLookups
	}

	var best *tmdb.SearchResult
	bestScore := -1 << 30
	hasDateMatch := false

	for idx := range candidates {
		cand := &candidates[idx]
		score := 0

		candDate, candYear := ParseReleaseDate(cand.ReleaseDate)

		if sourceDate != nil && candDate != nil && sameDay(*sourceDate, *candDate) {
			log.Info().
				Str("listing", listingName).
				Str("matched", cand.Title).
				Int("tmdb_id", cand.ID).
				Msg("exact release date match")
			return cand
		}

		if sourceYear != 0 && candYear != 0 {
			switch diff := abs(sourceYear - candYear); diff {
			case 0:
				score += scoreSameYear
				hasDateMatch = true
			case 1:
				score += scoreAdjacentYear
				hasDateMatch = true
			default:
				score += scoreYearMismatch
			}
		}

		nameLower := strings.ToLower(listingName)
		titleLower := strings.ToLower(cand.Title)
		origLower := strings.ToLower(cand.OriginalTitle)

		switch {
		case nameLower == titleLower:
			score += scoreTitleExact
		case strings.Contains(titleLower, nameLower) || strings.Contains(nameLower, titleLower):
			score += scoreTitlePartial
		}
		switch {
		case nameLower == origLower:
			score += scoreOrigExact
		case strings.Contains(origLower, nameLower) || strings.Contains(nameLower, origLower):
			score += scoreOrigPartial
		}

		if bonus := positionBonusBase - idx; bonus > 0 {
			score += bonus
		}

		if meta.HasCredits() && idx < maxCredit {
			score += m.creditBonus(ctx, cand, listingName, meta)
		}

		if score > bestScore {
			bestScore = score
			best = cand
		}
	}

	if !hasDateMatch && (sourceDate != nil || sourceYear != 0) {
		top := make([]string, 0, 5)
		for i := 0; i < len(candidates) && i < 5; i++ {
			top = append(top, fmt.Sprintf("%s: %s", candidates[i].Title, candidates[i].ReleaseDate))
		}
		issueCtx := map[string]any{
			"movie_name":   listingName,
			"source_year":  sourceYear,
			"tmdb_results": top,
		}
		if sourceDate != nil {
			issueCtx["source_date"] = sourceDate.Format("2006-01-02")
		}
		m.issues.Warn(ctx,
			"No TMDB Date Match",
			"match",
			fmt.Sprintf("no catalog result matched release date for %q", listingName),
			issueCtx,
		)
	}

	if best != nil {
		log.Info().
			Str("listing", listingName).
			Str("matched", best.Title).
			Int("tmdb_id", best.ID).
			Int("score", bestScore).
			Bool("date_matched", hasDateMatch).
			Msg("selected catalog match")
	} else {
		log.Warn().Str("listing", listingName).Msg("no suitable catalog match")
	}
	return best
}

// creditBonus fetches the candidate's credits and scores director and actor
// overlap. Detail fetch failures degrade to a zero bonus
func (m *Matcher) creditBonus(ctx context.Context, cand *tmdb.SearchResult, listingName string, meta *domain.Metadata) int {
	log := logger.C(ctx)

	if err := m.budget.Increment(ctx, BudgetService); err != nil {
		log.Error().Err(err).Msg("call budget increment failed")
	}
	details, err := m.catalog.MovieDetails(ctx, cand.ID, true)
	if err != nil {
		log.Warn().Err(err).Int("tmdb_id", cand.ID).Msg("credits fetch failed")
		m.issues.Warn(ctx,
			"TMDB Details Fetch Failed",
			"match",
			fmt.Sprintf("failed to fetch catalog details for movie id %d: %v", cand.ID, err),
			map[string]any{"movie_name": listingName, "tmdb_id": cand.ID, "tmdb_title": cand.Title},
		)
		return 0
	}

	score := 0

	if meta.Director != "" {
		want := m.norm.Normalize(meta.Director)
		for _, d := range details.Directors() {
			if m.norm.Normalize(d.Name) == want {
				score += scoreDirectorMatch
				break
			}
		}
	}

	if len(meta.Actors) > 0 {
		cast := details.Cast()
		if len(cast) > castCompareLimit {
			cast = cast[:castCompareLimit]
		}
		inCast := make(map[string]bool, len(cast))
		for _, c := range cast {
			inCast[m.norm.Normalize(c.Name)] = true
		}
		overlap := 0
		seen := make(map[string]bool, len(meta.Actors))
		for _, a := range meta.Actors {
			na := m.norm.Normalize(a)
			if na == "" || seen[na] {
				continue
			}
			seen[na] = true
			if inCast[na] {
				overlap++
			}
		}
		if overlap > 0 {
			bonus := overlap * scorePerActor
			if bonus > scoreActorCap {
				bonus = scoreActorCap
			}
			score += bonus
		}
	}

	return score
}

// ParseReleaseDate parses the catalog's "2006-01-02" date form, tolerating
// the empty and malformed values the API routinely returns
func ParseReleaseDate(s string) (*time.Time, int) {
	if s == "" {
		return nil, 0
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, 0
	}
	return &d, d.Year()
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
