package service

import (
	"context"
	"fmt"
	"testing"

	"cartelera/internal/adapters/catalog/tmdb"
	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/services/movies/domain"
	negdomain "cartelera/internal/services/negcache/domain"

	"github.com/google/uuid"
)

// stubTx satisfies repokit.TxRunner for binder plumbing; the fakes below
// never issue SQL, so any call through it is a test bug
type stubTx struct{}

func (stubTx) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	panic("unexpected db access")
}
func (stubTx) Query(context.Context, string, ...any) (repokit.Rows, error) {
	panic("unexpected db access")
}
func (stubTx) QueryRow(context.Context, string, ...any) repokit.Row {
	panic("unexpected db access")
}
func (stubTx) Tx(context.Context, func(q repokit.Queryer) error) error {
	panic("unexpected db access")
}

type fakeRepo struct {
	bySource map[string]*domain.Movie // key source + "|" + url
	byTMDB   map[int]*domain.Movie

	// failCreateOnce simulates losing a create race: the first Create
	// returns a duplicate-key error after installing winner in byTMDB
	failCreateOnce bool
	winner         *domain.Movie

	creates int
	binds   int
}

type fakeBinder struct{ r *fakeRepo }

func (b fakeBinder) Bind(repokit.Queryer) domain.Repo { return b.r }

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bySource: map[string]*domain.Movie{},
		byTMDB:   map[int]*domain.Movie{},
	}
}

func (r *fakeRepo) GetBySource(_ context.Context, source, url string) (*domain.Movie, error) {
	if m, ok := r.bySource[source+"|"+url]; ok {
		return m, nil
	}
	return nil, perr.ErrNotFound
}

func (r *fakeRepo) GetByTMDBID(_ context.Context, tmdbID int) (*domain.Movie, error) {
	if m, ok := r.byTMDB[tmdbID]; ok {
		return m, nil
	}
	return nil, perr.ErrNotFound
}

func (r *fakeRepo) GetBySlug(_ context.Context, slug string) (*domain.Movie, error) {
	return nil, perr.ErrNotFound
}

func (r *fakeRepo) Create(_ context.Context, m *domain.Movie) error {
	r.creates++
	if r.failCreateOnce {
		r.failCreateOnce = false
		if r.winner != nil && r.winner.TMDBID != nil {
			r.byTMDB[*r.winner.TMDBID] = r.winner
		}
		return perr.Newf(perr.ErrorCodeDuplicateKey, "movies_tmdb_id_key")
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.TMDBID != nil {
		r.byTMDB[*m.TMDBID] = m
	}
	return nil
}

func (r *fakeRepo) Bind(_ context.Context, movieID uuid.UUID, source, url string) error {
	r.binds++
	for _, m := range r.byTMDB {
		if m.ID == movieID {
			r.bySource[source+"|"+url] = m
			return nil
		}
	}
	return fmt.Errorf("bind: unknown movie %s", movieID)
}

type negEntry struct {
	attempts int
	reason   string
}

type fakeNegcache struct {
	entries map[string]*negEntry
}

func (f *fakeNegcache) Touch(_ context.Context, url string) (bool, error) {
	e, ok := f.entries[url]
	if !ok {
		return false, nil
	}
	e.attempts++
	return true, nil
}

func (f *fakeNegcache) Record(_ context.Context, url, _, _, reason string) error {
	if e, ok := f.entries[url]; ok {
		e.attempts++
		e.reason = reason
		return nil
	}
	f.entries[url] = &negEntry{attempts: 1, reason: reason}
	return nil
}

type fakeBudget struct{ counts map[string]int }

func (f *fakeBudget) Increment(_ context.Context, service string) error {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[service]++
	return nil
}

type issueRec struct {
	name     string
	severity string
}

type fakeIssues struct{ records []issueRec }

func (f *fakeIssues) Warn(_ context.Context, name, _, _ string, _ map[string]any) {
	f.records = append(f.records, issueRec{name: name, severity: "warning"})
}

func (f *fakeIssues) Error(_ context.Context, name, _, _, _ string, _ map[string]any) {
	f.records = append(f.records, issueRec{name: name, severity: "error"})
}

type fakeCatalog struct {
	searchCalls int
	results     []tmdb.SearchResult
	searchErr   error
	details     map[int]*tmdb.Details
}

func (f *fakeCatalog) SearchMovies(_ context.Context, _ string, _ int) (tmdb.SearchResponse, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return tmdb.SearchResponse{}, f.searchErr
	}
	return tmdb.SearchResponse{TotalResults: len(f.results), Results: f.results}, nil
}

func (f *fakeCatalog) MovieDetails(_ context.Context, id int, _ bool) (*tmdb.Details, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, perr.Catalogf("no details for %d", id)
}

func (f *fakeCatalog) PosterURL(posterPath *string, size string) string {
	if posterPath == nil {
		return ""
	}
	return "https://img.example/" + size + *posterPath
}

func newService(repo *fakeRepo, cat *fakeCatalog, neg *fakeNegcache, bud *fakeBudget, iss *fakeIssues) *Service {
	deps := modkit.Deps{PG: stubTx{}}
	return New(deps, fakeBinder{r: repo}, cat, neg, bud, iss)
}

func yearPtr(y int) *int { return &y }

func TestResolveIdempotent(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{results: []tmdb.SearchResult{
		{ID: 42, Title: "Dune", OriginalTitle: "Dune", ReleaseDate: "2021-09-15"},
	}}
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	bud := &fakeBudget{}
	iss := &fakeIssues{}
	svc := newService(repo, cat, neg, bud, iss)

	in := domain.ResolveInput{
		ListingName: "Dune",
		SourceURL:   "https://src.example/dune",
		SourceName:  "cinemark",
		Metadata:    &domain.Metadata{ReleaseYear: yearPtr(2021)},
	}

	first, err := svc.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Movie == nil || !first.IsNew || !first.CatalogCalled {
		t.Fatalf("first resolve = %+v, want new movie with catalog call", first)
	}
	if cat.searchCalls != 1 {
		t.Fatalf("search calls after first resolve = %d, want 1", cat.searchCalls)
	}

	second, err := svc.Resolve(context.Background(), in)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.Movie == nil || second.Movie.ID != first.Movie.ID {
		t.Fatalf("second resolve returned a different movie")
	}
	if second.IsNew || second.CatalogCalled {
		t.Fatalf("second resolve = %+v, want cached binding with no catalog call", second)
	}
	if cat.searchCalls != 1 {
		t.Fatalf("search calls after second resolve = %d, want 1", cat.searchCalls)
	}
}

func TestResolveNegativeCacheGrowth(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{} // zero results
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	bud := &fakeBudget{}
	iss := &fakeIssues{}
	svc := newService(repo, cat, neg, bud, iss)

	in := domain.ResolveInput{
		ListingName: "Pelicula Fantasma",
		SourceURL:   "https://src.example/fantasma",
		SourceName:  "royal",
	}

	for i := 0; i < 3; i++ {
		res, err := svc.Resolve(context.Background(), in)
		if err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
		if res.Movie != nil {
			t.Fatalf("resolve %d returned a movie for an unresolvable url", i)
		}
		wantCalled := i == 0
		if res.CatalogCalled != wantCalled {
			t.Fatalf("resolve %d catalogCalled = %v, want %v", i, res.CatalogCalled, wantCalled)
		}
	}

	if cat.searchCalls != 1 {
		t.Fatalf("search calls = %d, want 1", cat.searchCalls)
	}
	if len(neg.entries) != 1 {
		t.Fatalf("negative cache entries = %d, want 1", len(neg.entries))
	}
	e := neg.entries[in.SourceURL]
	if e == nil || e.attempts != 3 {
		t.Fatalf("attempts = %+v, want 3", e)
	}
	if e.reason != negdomain.ReasonNoResults {
		t.Fatalf("reason = %q, want %q", e.reason, negdomain.ReasonNoResults)
	}

	warnings := 0
	for _, r := range iss.records {
		if r.name == "Unfindable Movie URL" && r.severity == "warning" {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("unfindable warnings = %d, want 1", warnings)
	}
}

func TestResolveCatalogErrorIsolated(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{searchErr: perr.Catalogf("catalog request timed out")}
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	bud := &fakeBudget{}
	iss := &fakeIssues{}
	svc := newService(repo, cat, neg, bud, iss)

	res, err := svc.Resolve(context.Background(), domain.ResolveInput{
		ListingName: "Dune",
		SourceURL:   "https://src.example/dune",
		SourceName:  "cinemark",
	})
	if err != nil {
		t.Fatalf("catalog failure must not propagate, got %v", err)
	}
	if res.Movie != nil || !res.CatalogCalled {
		t.Fatalf("result = %+v, want no movie with catalogCalled", res)
	}
	if len(neg.entries) != 0 {
		t.Fatalf("catalog failure must not poison the negative cache")
	}

	found := false
	for _, r := range iss.records {
		if r.name == "TMDB API Error" && r.severity == "error" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error-severity catalog issue, got %+v", iss.records)
	}
}

func TestResolveReusesExistingByCatalogID(t *testing.T) {
	repo := newFakeRepo()
	id := 603
	existing := &domain.Movie{ID: uuid.New(), Slug: "the-matrix-1999", Title: "The Matrix", TMDBID: &id}
	repo.byTMDB[id] = existing

	cat := &fakeCatalog{results: []tmdb.SearchResult{
		{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31"},
	}}
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	svc := newService(repo, cat, neg, &fakeBudget{}, &fakeIssues{})

	res, err := svc.Resolve(context.Background(), domain.ResolveInput{
		ListingName: "Matrix",
		SourceURL:   "https://src.example/matrix",
		SourceName:  "cinepolis",
		Metadata:    &domain.Metadata{ReleaseYear: yearPtr(1999)},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Movie == nil || res.Movie.ID != existing.ID {
		t.Fatalf("expected reuse of the existing movie, got %+v", res.Movie)
	}
	if res.IsNew {
		t.Fatalf("reused movie must not be reported as new")
	}
	if repo.creates != 0 {
		t.Fatalf("creates = %d, want 0", repo.creates)
	}
	if _, err := repo.GetBySource(context.Background(), "cinepolis", "https://src.example/matrix"); err != nil {
		t.Fatalf("url was not bound to the reused movie: %v", err)
	}
}

func TestResolveCreateRaceReusesWinner(t *testing.T) {
	repo := newFakeRepo()
	winID := 550
	winner := &domain.Movie{ID: uuid.New(), Slug: "fight-club-1999", Title: "Fight Club", TMDBID: &winID}
	repo.failCreateOnce = true
	repo.winner = winner

	cat := &fakeCatalog{results: []tmdb.SearchResult{
		{ID: 550, Title: "Fight Club", ReleaseDate: "1999-10-15"},
	}}
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	svc := newService(repo, cat, neg, &fakeBudget{}, &fakeIssues{})

	res, err := svc.Resolve(context.Background(), domain.ResolveInput{
		ListingName: "Fight Club",
		SourceURL:   "https://src.example/fight-club",
		SourceName:  "cinemark",
		Metadata:    &domain.Metadata{ReleaseYear: yearPtr(1999)},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Movie == nil || res.Movie.ID != winner.ID {
		t.Fatalf("expected the concurrent winner, got %+v", res.Movie)
	}
	if res.IsNew {
		t.Fatalf("race loser must not report the movie as new")
	}
}

func TestResolveSearchesByOriginalTitle(t *testing.T) {
	repo := newFakeRepo()
	cat := &fakeCatalog{results: []tmdb.SearchResult{
		{ID: 7, Title: "Intensamente 2", OriginalTitle: "Inside Out 2", ReleaseDate: "2024-06-14"},
	}}
	neg := &fakeNegcache{entries: map[string]*negEntry{}}
	svc := newService(repo, cat, neg, &fakeBudget{}, &fakeIssues{})

	res, err := svc.Resolve(context.Background(), domain.ResolveInput{
		ListingName: "Intensamente 2",
		SourceURL:   "https://src.example/intensamente-2",
		SourceName:  "cinemark",
		Metadata: &domain.Metadata{
			OriginalTitle: "Inside Out 2",
			ReleaseYear:   yearPtr(2024),
		},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Movie == nil || !res.IsNew {
		t.Fatalf("result = %+v, want newly created movie", res)
	}
	if res.Movie.OriginalTitle != "Inside Out 2" {
		t.Fatalf("original title = %q", res.Movie.OriginalTitle)
	}
	if res.Movie.Year() != 2024 {
		t.Fatalf("release year = %d, want 2024", res.Movie.Year())
	}
}
