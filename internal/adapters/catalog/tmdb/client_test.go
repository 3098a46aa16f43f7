package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	perr "cartelera/internal/platform/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{})
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("missing token should be a config error, got %v", err)
	}
}

func TestSearchMovies(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("missing bearer auth, got %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "Avatar" || q.Get("year") != "2025" || q.Get("language") != "es-ES" {
			t.Fatalf("unexpected query params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"page": 1, "total_pages": 1, "total_results": 2,
			"results": [
				{"id": 19995, "title": "Avatar", "original_title": "Avatar", "release_date": "2009-12-18"},
				{"id": 83533, "title": "Avatar: Fuego y Cenizas", "original_title": "Avatar: Fire and Ash", "release_date": "2025-12-19"}
			]
		}`))
	})

	resp, err := c.SearchMovies(context.Background(), "Avatar", 2025)
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if resp.TotalResults != 2 || len(resp.Results) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Results[1].ReleaseDate != "2025-12-19" {
		t.Fatalf("release date mismatch: %+v", resp.Results[1])
	}
}

func TestMovieDetailsWithCredits(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/83533" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Fatalf("credits should be appended: %v", r.URL.Query())
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 83533, "title": "Avatar: Fuego y Cenizas", "runtime": 190,
			"credits": {
				"cast": [{"id": 1, "name": "Sam Worthington", "order": 0}],
				"crew": [
					{"id": 2, "name": "James Cameron", "job": "Director"},
					{"id": 3, "name": "Jon Landau", "job": "Producer"}
				]
			}
		}`))
	})

	d, err := c.MovieDetails(context.Background(), 83533, true)
	if err != nil {
		t.Fatalf("MovieDetails: %v", err)
	}
	dirs := d.Directors()
	if len(dirs) != 1 || dirs[0].Name != "James Cameron" {
		t.Fatalf("Directors = %+v", dirs)
	}
	if len(d.Cast()) != 1 {
		t.Fatalf("Cast = %+v", d.Cast())
	}
}

func TestHTTPErrorSurfacesAsCatalogError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
	})

	_, err := c.SearchMovies(context.Background(), "whatever", 0)
	if !perr.IsCode(err, perr.ErrorCodeCatalog) {
		t.Fatalf("http failure should map to catalog error, got %v", err)
	}
	e, _ := perr.As(err)
	if e.ToWire().Message != "catalog error: 401" {
		t.Fatalf("status detail should be in the message, got %q", e.ToWire().Message)
	}
}

func TestTimeoutSurfacesAsCatalogError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, Token: "t", Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.SearchMovies(context.Background(), "slow", 0)
	if !perr.IsCode(err, perr.ErrorCodeCatalog) {
		t.Fatalf("timeout should map to catalog error, got %v", err)
	}
}

func TestPosterURL(t *testing.T) {
	c, err := New(Config{Token: "t"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := "/abc.jpg"
	if got := c.PosterURL(&p, ""); got != "https://image.tmdb.org/t/p/w500/abc.jpg" {
		t.Fatalf("PosterURL = %q", got)
	}
	if got := c.PosterURL(nil, "w500"); got != "" {
		t.Fatalf("nil path should yield empty url, got %q", got)
	}
}
