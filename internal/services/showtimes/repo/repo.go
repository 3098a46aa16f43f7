// Package repo provides Postgres bindings for showtime snapshots
package repo

import (
	"context"
	"time"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	pstrings "cartelera/internal/platform/strings"
	"cartelera/internal/services/showtimes/domain"

	"github.com/google/uuid"
)

type (
	// PG is a Postgres binder for domain.Repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

var _ domain.Repo = (*queries)(nil)

// NewPG returns a Postgres binder for Repo
func NewPG() repokit.Binder[domain.Repo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.Repo { return &queries{q: q} }

func (r *queries) DeleteForVenue(ctx context.Context, venueID uuid.UUID) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM showtimes WHERE venue_id = $1`, venueID)
	if err != nil {
		return 0, perr.FromPostgres(err, "delete venue showtimes")
	}
	return tag.RowsAffected(), nil
}

func (r *queries) DeleteForVenueDates(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int64, error) {
	if len(dates) == 0 {
		return 0, nil
	}
	days := make([]string, 0, len(dates))
	for _, d := range dates {
		days = append(days, d.Format("2006-01-02"))
	}
	tag, err := r.q.Exec(ctx, `
		DELETE FROM showtimes
		WHERE venue_id = $1 AND start_date = ANY($2::date[])
	`, venueID, days)
	if err != nil {
		return 0, perr.FromPostgres(err, "delete venue showtimes by date")
	}
	return tag.RowsAffected(), nil
}

func (r *queries) Insert(ctx context.Context, e *domain.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO showtimes
			(id, venue_id, movie_id, start_date, start_time, format, translation_type, screen, source_url)
		VALUES ($1, $2, $3, $4, $5::time, $6, $7, $8, $9)
	`, e.ID, e.VenueID, e.MovieID, e.StartDate.Format("2006-01-02"), e.StartTime,
		e.Format, e.TranslationType, e.Screen, pstrings.SQLNull(e.SourceURL))
	if err != nil {
		return perr.FromPostgresWithField(err, "insert showtime")
	}
	return nil
}

func (r *queries) ListForVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, venue_id, movie_id, start_date,
		       to_char(start_time, 'HH24:MI'),
		       format, translation_type, screen, coalesce(source_url, ''), created_at
		FROM showtimes
		WHERE venue_id = $1
		ORDER BY start_date, start_time
	`, venueID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list venue showtimes")
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		err := rows.Scan(&e.ID, &e.VenueID, &e.MovieID, &e.StartDate, &e.StartTime,
			&e.Format, &e.TranslationType, &e.Screen, &e.SourceURL, &e.CreatedAt)
		if err != nil {
			return nil, perr.FromPostgres(err, "scan showtime")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "iterate venue showtimes")
	}
	return out, nil
}
