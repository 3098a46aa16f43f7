// Package repo provides Postgres bindings for domain.Repo
package repo

import (
	"context"
	"errors"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	pstrings "cartelera/internal/platform/strings"
	"cartelera/internal/services/movies/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// Compile-time assertion: queries implements domain.Repo
var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

// Columns are m-qualified so the source-url join stays unambiguous
const movieColumns = `
	m.id, m.slug, m.title, m.original_title, m.release_year, m.duration_minutes,
	m.synopsis, m.tmdb_id, m.rating, m.poster_url, m.created_at
`

func (r *queries) scanMovie(row repokit.Row) (*domain.Movie, error) {
	var m domain.Movie
	var origTitle, synopsis, poster *string
	err := row.Scan(
		&m.ID, &m.Slug, &m.Title, &origTitle, &m.ReleaseYear, &m.DurationMinutes,
		&synopsis, &m.TMDBID, &m.Rating, &poster, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perr.ErrNotFound
		}
		return nil, perr.FromPostgres(err, "scan movie")
	}
	m.OriginalTitle = pstrings.Deref(origTitle)
	m.Synopsis = pstrings.Deref(synopsis)
	m.PosterURL = pstrings.Deref(poster)
	return &m, nil
}

func (r *queries) GetBySource(ctx context.Context, source, url string) (*domain.Movie, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+movieColumns+`
		FROM movies m
		JOIN movie_source_urls b ON b.movie_id = m.id
		WHERE b.source = $1 AND b.url = $2
	`, source, url)
	return r.scanMovie(row)
}

func (r *queries) GetByTMDBID(ctx context.Context, tmdbID int) (*domain.Movie, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+movieColumns+`
		FROM movies m
		WHERE m.tmdb_id = $1
	`, tmdbID)
	return r.scanMovie(row)
}

func (r *queries) GetBySlug(ctx context.Context, slug string) (*domain.Movie, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+movieColumns+`
		FROM movies m
		WHERE m.slug = $1
	`, slug)
	return r.scanMovie(row)
}

func (r *queries) Create(ctx context.Context, m *domain.Movie) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO movies (
			id, slug, title, original_title, release_year, duration_minutes,
			synopsis, tmdb_id, rating, poster_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		m.ID, m.Slug, m.Title, pstrings.SQLNull(m.OriginalTitle), m.ReleaseYear,
		m.DurationMinutes, pstrings.SQLNull(m.Synopsis), pstrings.SQLNullInt(m.TMDBID),
		m.Rating, pstrings.SQLNull(m.PosterURL),
	)
	if err != nil {
		return perr.FromPostgresWithField(err, "insert movie")
	}
	return nil
}

func (r *queries) Bind(ctx context.Context, movieID uuid.UUID, source, url string) error {
	// A movie keeps its first URL per source; repeats and races are no-ops
	_, err := r.q.Exec(ctx, `
		INSERT INTO movie_source_urls (id, movie_id, source, url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, uuid.New(), movieID, source, url)
	if err != nil {
		return perr.FromPostgres(err, "bind source url")
	}
	return nil
}
