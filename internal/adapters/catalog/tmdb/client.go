// Package tmdb is a typed client for the themoviedb.org v3 API
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cartelera/internal/platform/config"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/platform/logger"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultImageURL = "https://image.tmdb.org/t/p"
	defaultLanguage = "es-ES"
	defaultTimeout  = 10 * time.Second
)

// Config configures the client. Zero values take the documented defaults
type Config struct {
	BaseURL  string
	ImageURL string
	Token    string
	Language string
	Timeout  time.Duration
}

// FromConf reads client config from a CATALOG_* env view
func FromConf(cfg config.Conf) Config {
	cat := cfg.Prefix("CATALOG_")
	return Config{
		BaseURL:  cat.MayString("BASE_URL", defaultBaseURL),
		ImageURL: cat.MayString("IMAGE_URL", defaultImageURL),
		Token:    cat.MustString("TOKEN"),
		Language: cat.MayString("LANGUAGE", defaultLanguage),
		Timeout:  cat.MayDuration("TIMEOUT", defaultTimeout),
	}
}

// Client calls the catalog over HTTP with bearer auth and a fixed timeout.
// Every transport failure surfaces as a single catalog error kind; the
// timeout/status/network distinction survives only in the message
type Client struct {
	base     string
	imageURL string
	token    string
	language string
	http     *http.Client
	log      logger.Logger
}

// New constructs a Client, validating required config
func New(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, perr.Configf("catalog token is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	img := cfg.ImageURL
	if img == "" {
		img = defaultImageURL
	}
	lang := cfg.Language
	if lang == "" {
		lang = defaultLanguage
	}
	to := cfg.Timeout
	if to <= 0 {
		to = defaultTimeout
	}
	return &Client{
		base:     base,
		imageURL: img,
		token:    cfg.Token,
		language: lang,
		http:     &http.Client{Timeout: to},
		log:      *logger.Named("tmdb"),
	}, nil
}

// SearchMovies searches by title. year = 0 means no year filter
func (c *Client) SearchMovies(ctx context.Context, query string, year int) (SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)
	params.Set("page", "1")
	params.Set("include_adult", "false")
	if year > 0 {
		params.Set("year", strconv.Itoa(year))
	}

	c.log.Info().Str("query", query).Int("year", year).Msg("catalog search")

	var out SearchResponse
	if err := c.get(ctx, "/search/movie", params, &out); err != nil {
		return SearchResponse{}, err
	}
	return out, nil
}

// MovieDetails fetches one movie by catalog id, optionally appending credits
// so cast and crew arrive in the same call
func (c *Client) MovieDetails(ctx context.Context, id int, includeCredits bool) (*Details, error) {
	params := url.Values{}
	params.Set("language", c.language)
	if includeCredits {
		params.Set("append_to_response", "credits")
	}

	c.log.Info().Int("tmdb_id", id).Bool("credits", includeCredits).Msg("catalog details")

	var out Details
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PosterURL builds the full image URL for a poster path. Returns "" for nil paths
func (c *Client) PosterURL(posterPath *string, size string) string {
	if posterPath == nil || *posterPath == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return c.imageURL + "/" + size + *posterPath
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dst any) error {
	u := c.base + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return perr.CatalogWrap(err, "catalog request build failed")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.log.Error().Str("url", endpoint).Msg("catalog request timed out")
			return perr.CatalogWrap(err, "catalog request timed out")
		}
		c.log.Error().Err(err).Str("url", endpoint).Msg("catalog request failed")
		return perr.CatalogWrap(err, "catalog request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error().Int("status", resp.StatusCode).Str("url", endpoint).Bytes("body", body).Msg("catalog http error")
		return perr.Catalogf("catalog error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return perr.CatalogWrap(err, "catalog response decode failed")
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
