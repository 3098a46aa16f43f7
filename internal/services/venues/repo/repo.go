// Package repo provides Postgres bindings for the venue registry
package repo

import (
	"context"
	"errors"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/services/venues/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const venueColumns = `id, name, slug, chain, address, city, source, source_ref, active, created_at, updated_at`

func (r *queries) ListBySource(ctx context.Context, source string) ([]domain.Venue, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE source = $1 AND active
		ORDER BY slug
	`, source)
	if err != nil {
		return nil, perr.FromPostgres(err, "list venues")
	}
	defer rows.Close()

	var out []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "iterate venues")
	}
	return out, nil
}

func (r *queries) GetBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+venueColumns+`
		FROM venues
		WHERE slug = $1
	`, slug)
	return scanVenue(row)
}

func (r *queries) Upsert(ctx context.Context, v *domain.Venue) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO venues (id, name, slug, chain, address, city, source, source_ref, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			chain = EXCLUDED.chain,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			source = EXCLUDED.source,
			source_ref = EXCLUDED.source_ref,
			active = EXCLUDED.active,
			updated_at = now()
	`, v.ID, v.Name, v.Slug, v.Chain, v.Address, v.City, v.Source, v.SourceRef, v.Active)
	if err != nil {
		return perr.FromPostgresWithField(err, "upsert venue")
	}
	return nil
}

func scanVenue(row repokit.Row) (*domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.Chain, &v.Address, &v.City,
		&v.Source, &v.SourceRef, &v.Active, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perr.ErrNotFound
		}
		return nil, perr.FromPostgres(err, "scan venue")
	}
	return &v, nil
}
