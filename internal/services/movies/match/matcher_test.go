package match

import (
	"context"
	"fmt"
	"testing"

	"cartelera/internal/adapters/catalog/tmdb"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/services/movies/domain"
)

type fakeCatalog struct {
	detailCalls int
	details     map[int]*tmdb.Details
	detailErr   error
}

func (f *fakeCatalog) SearchMovies(ctx context.Context, query string, year int) (tmdb.SearchResponse, error) {
	panic("matcher must not search")
}

func (f *fakeCatalog) MovieDetails(ctx context.Context, id int, includeCredits bool) (*tmdb.Details, error) {
	f.detailCalls++
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &tmdb.Details{ID: id}, nil
}

func (f *fakeCatalog) PosterURL(p *string, size string) string { return "" }

type fakeBudget struct{ calls map[string]int }

func (f *fakeBudget) Increment(ctx context.Context, service string) error {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[service]++
	return nil
}

type issueRec struct {
	Name    string
	Message string
}

type fakeIssues struct {
	warns []issueRec
	errs  []issueRec
}

func (f *fakeIssues) Warn(ctx context.Context, name, task, message string, c map[string]any) {
	f.warns = append(f.warns, issueRec{name, message})
}

func (f *fakeIssues) Error(ctx context.Context, name, task, message, trace string, c map[string]any) {
	f.errs = append(f.errs, issueRec{name, message})
}

func newTestMatcher() (*Matcher, *fakeCatalog, *fakeBudget, *fakeIssues) {
	cat := &fakeCatalog{}
	bud := &fakeBudget{}
	iss := &fakeIssues{}
	return New(cat, bud, iss, "cinemark"), cat, bud, iss
}

func intp(n int) *int { return &n }

func TestEmptyCandidatesReturnsNil(t *testing.T) {
	m, _, _, iss := newTestMatcher()
	if got := m.BestMatch(context.Background(), nil, "whatever", &domain.Metadata{}); got != nil {
		t.Fatalf("expected nil for empty candidates, got %+v", got)
	}
	if len(iss.warns) != 0 {
		t.Fatalf("empty candidate list must not emit issues: %+v", iss.warns)
	}
}

func TestNoMetadataFallsBackToFirstCandidate(t *testing.T) {
	m, cat, _, iss := newTestMatcher()
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
	}
	got := m.BestMatch(context.Background(), cands, "Mystery Film", nil)
	if got == nil || got.ID != 1 {
		t.Fatalf("expected first candidate, got %+v", got)
	}
	if len(iss.warns) != 1 || iss.warns[0].Name != "No cinemark Metadata" {
		t.Fatalf("expected one no-metadata warning, got %+v", iss.warns)
	}
	if cat.detailCalls != 0 {
		t.Fatalf("fallback must not fetch credits, got %d calls", cat.detailCalls)
	}
}

func TestExactDateDominance(t *testing.T) {
	m, _, _, _ := newTestMatcher()
	// The exact-date candidate sits last and would lose on accumulated score
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "Gladiator", ReleaseDate: "2024-11-15"},
		{ID: 2, Title: "Gladiator II", ReleaseDate: "2024-11-13"},
	}
	d, _ := ParseReleaseDate("2024-11-13")
	meta := &domain.Metadata{ReleaseDate: d, ReleaseYear: intp(2024)}

	got := m.BestMatch(context.Background(), cands, "Gladiator", meta)
	if got == nil || got.ID != 2 {
		t.Fatalf("exact date candidate must win regardless of position, got %+v", got)
	}
}

func TestMonotonicYearScoring(t *testing.T) {
	m, _, _, _ := newTestMatcher()
	// Identical titles so only year and position differ; the same-year
	// candidate is placed last to prove year outweighs position
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "Dune", ReleaseDate: "2019-01-01"}, // off by two: -50 + 10
		{ID: 2, Title: "Dune", ReleaseDate: "2020-01-01"}, // off by one: +50 + 9
		{ID: 3, Title: "Dune", ReleaseDate: "2021-01-01"}, // same year: +100 + 8
	}
	meta := &domain.Metadata{ReleaseYear: intp(2021)}
	got := m.BestMatch(context.Background(), cands, "Dune", meta)
	if got == nil || got.ID != 3 {
		t.Fatalf("same-year candidate must outscore the rest, got %+v", got)
	}

	got = m.BestMatch(context.Background(), cands[:2], "Dune", meta)
	if got == nil || got.ID != 2 {
		t.Fatalf("off-by-one must outscore off-by-two, got %+v", got)
	}
}

func TestAvatarScenario(t *testing.T) {
	m, _, _, _ := newTestMatcher()
	cands := []tmdb.SearchResult{
		{ID: 19995, Title: "Avatar", ReleaseDate: "2009-12-18"},
		{ID: 83533, Title: "Avatar: Fuego y Cenizas", ReleaseDate: "2025-12-19"},
	}
	meta := &domain.Metadata{ReleaseYear: intp(2025)}
	got := m.BestMatch(context.Background(), cands, "Avatar: Fuego y Cenizas", meta)
	if got == nil || got.ID != 83533 {
		t.Fatalf("2025 candidate must win, got %+v", got)
	}
}

func TestTieKeepsEarliestSeen(t *testing.T) {
	m, _, _, _ := newTestMatcher()
	// Positions beyond 10 earn no position bonus, so two identical
	// candidates there score identically; strict > keeps the first
	var cands []tmdb.SearchResult
	for i := 0; i < 10; i++ {
		cands = append(cands, tmdb.SearchResult{ID: i, Title: fmt.Sprintf("Unrelated %d", i), ReleaseDate: "1990-01-01"})
	}
	cands = append(cands,
		tmdb.SearchResult{ID: 100, Title: "El Conde", ReleaseDate: "2023-09-07"},
		tmdb.SearchResult{ID: 101, Title: "El Conde", ReleaseDate: "2023-09-07"},
	)
	meta := &domain.Metadata{ReleaseYear: intp(2023)}
	got := m.BestMatch(context.Background(), cands, "El Conde", meta)
	if got == nil || got.ID != 100 {
		t.Fatalf("equal scores must keep the earliest candidate, got %+v", got)
	}
}

func TestCreditLookupsCappedAndBudgeted(t *testing.T) {
	m, cat, bud, _ := newTestMatcher()
	var cands []tmdb.SearchResult
	for i := 0; i < 8; i++ {
		cands = append(cands, tmdb.SearchResult{ID: i, Title: "Same", ReleaseDate: "2024-01-01"})
	}
	meta := &domain.Metadata{ReleaseYear: intp(2024), Director: "Someone"}

	m.BestMatch(context.Background(), cands, "Same", meta)
	if cat.detailCalls != DefaultMaxCreditLookups {
		t.Fatalf("detail calls = %d, want %d", cat.detailCalls, DefaultMaxCreditLookups)
	}
	if bud.calls[BudgetService] != DefaultMaxCreditLookups {
		t.Fatalf("budget increments = %d, want %d", bud.calls[BudgetService], DefaultMaxCreditLookups)
	}

	m.MaxCreditLookups = 2
	cat.detailCalls = 0
	m.BestMatch(context.Background(), cands, "Same", meta)
	if cat.detailCalls != 2 {
		t.Fatalf("configured cap ignored, detail calls = %d", cat.detailCalls)
	}
}

func TestDirectorMatchIsAccentInsensitive(t *testing.T) {
	m, cat, _, _ := newTestMatcher()
	cat.details = map[int]*tmdb.Details{
		2: {ID: 2, Credits: &tmdb.Credits{
			Crew: []tmdb.CrewMember{{Name: "Pedro Almodóvar", Job: "Director"}},
		}},
	}
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "La Habitación", ReleaseDate: "2024-05-01"},
		{ID: 2, Title: "La Habitación de al Lado", ReleaseDate: "2024-10-18"},
	}
	meta := &domain.Metadata{ReleaseYear: intp(2024), Director: "pedro almodovar"}
	got := m.BestMatch(context.Background(), cands, "La Habitación de al Lado", meta)
	if got == nil || got.ID != 2 {
		t.Fatalf("director bonus should pick candidate 2, got %+v", got)
	}
}

func TestActorOverlapCapped(t *testing.T) {
	m, cat, _, _ := newTestMatcher()
	cast := []tmdb.CastMember{
		{Name: "A One"}, {Name: "B Two"}, {Name: "C Three"}, {Name: "D Four"}, {Name: "E Five"},
	}
	cat.details = map[int]*tmdb.Details{
		1: {ID: 1, Credits: &tmdb.Credits{Cast: cast}},
		2: {ID: 2, Credits: &tmdb.Credits{Crew: []tmdb.CrewMember{{Name: "The Director", Job: "Director"}}}},
	}

	// Candidate 1: five overlapping actors. Uncapped that is 150 and its
	// position bonus (10) would beat candidate 2's director match (150 + 9).
	// With the 90 cap, candidate 2 wins
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "Ensemble", ReleaseDate: "2024-01-01"},
		{ID: 2, Title: "Ensemble", ReleaseDate: "2024-01-01"},
	}
	meta := &domain.Metadata{
		ReleaseYear: intp(2024),
		Director:    "The Director",
		Actors:      []string{"A One", "B Two", "C Three", "D Four", "E Five"},
	}
	got := m.BestMatch(context.Background(), cands, "Ensemble", meta)
	if got == nil || got.ID != 2 {
		t.Fatalf("actor bonus must cap at 90, got %+v", got)
	}
}

func TestDetailsFetchFailureDegrades(t *testing.T) {
	m, cat, _, iss := newTestMatcher()
	cat.detailErr = perr.Catalogf("catalog error: 500")
	cands := []tmdb.SearchResult{{ID: 1, Title: "Resilient", ReleaseDate: "2024-01-01"}}
	meta := &domain.Metadata{ReleaseYear: intp(2024), Director: "Anyone"}

	got := m.BestMatch(context.Background(), cands, "Resilient", meta)
	if got == nil || got.ID != 1 {
		t.Fatalf("fetch failure must not block selection, got %+v", got)
	}
	found := false
	for _, w := range iss.warns {
		if w.Name == "TMDB Details Fetch Failed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a details-fetch warning, got %+v", iss.warns)
	}
}

func TestNoDateMatchIssueEmitted(t *testing.T) {
	m, _, _, iss := newTestMatcher()
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "Old Cut", ReleaseDate: "1999-01-01"},
		{ID: 2, Title: "Old Cut Redux", ReleaseDate: "2001-06-01"},
	}
	meta := &domain.Metadata{ReleaseYear: intp(2024)}
	if got := m.BestMatch(context.Background(), cands, "Old Cut", meta); got == nil {
		t.Fatalf("selection should still happen")
	}
	found := false
	for _, w := range iss.warns {
		if w.Name == "No TMDB Date Match" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a no-date-match warning, got %+v", iss.warns)
	}
}

func TestMissingYearStillScoresTitles(t *testing.T) {
	m, _, _, iss := newTestMatcher()
	cands := []tmdb.SearchResult{
		{ID: 1, Title: "Totally Different", ReleaseDate: "2020-01-01"},
		{ID: 2, Title: "La Sustancia", ReleaseDate: "2024-09-20"},
	}
	meta := &domain.Metadata{Genre: "Horror"} // no year, no date
	got := m.BestMatch(context.Background(), cands, "La Sustancia", meta)
	if got == nil || got.ID != 2 {
		t.Fatalf("title match should carry selection without year data, got %+v", got)
	}
	found := false
	for _, w := range iss.warns {
		if w.Name == "Missing cinemark Release Date" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a missing-release-date warning, got %+v", iss.warns)
	}
}
