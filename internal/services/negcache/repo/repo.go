// Package repo provides Postgres bindings for the negative cache
package repo

import (
	"context"
	"errors"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	pstrings "cartelera/internal/platform/strings"
	"cartelera/internal/services/negcache/domain"

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

func (r *queries) Touch(ctx context.Context, url string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE unfindable_urls
		SET attempts = attempts + 1, last_seen = now()
		WHERE url = $1
	`, url)
	if err != nil {
		return false, perr.FromPostgres(err, "touch unfindable url")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) Record(ctx context.Context, url, title, originalTitle, reason string) error {
	// Single upsert so two runs racing on the same url cannot double-insert
	_, err := r.q.Exec(ctx, `
		INSERT INTO unfindable_urls (id, url, title, original_title, reason, attempts)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			original_title = EXCLUDED.original_title,
			reason = EXCLUDED.reason,
			attempts = unfindable_urls.attempts + 1,
			last_seen = now()
	`, uuid.New(), url, title, pstrings.SQLNull(originalTitle), reason)
	if err != nil {
		return perr.FromPostgres(err, "record unfindable url")
	}
	return nil
}

func (r *queries) Get(ctx context.Context, url string) (*domain.Entry, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, url, title, original_title, reason, attempts, first_seen, last_seen
		FROM unfindable_urls
		WHERE url = $1
	`, url)
	return scanEntry(row)
}

func (r *queries) List(ctx context.Context, limit, offset int) ([]domain.Entry, int, error) {
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM unfindable_urls`).Scan(&total); err != nil {
		return nil, 0, perr.FromPostgres(err, "count unfindable urls")
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, url, title, original_title, reason, attempts, first_seen, last_seen
		FROM unfindable_urls
		ORDER BY last_seen DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "list unfindable urls")
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, perr.FromPostgres(err, "iterate unfindable urls")
	}
	return out, total, nil
}

func (r *queries) Delete(ctx context.Context, url string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM unfindable_urls WHERE url = $1`, url)
	if err != nil {
		return perr.FromPostgres(err, "delete unfindable url")
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("unfindable url %q", url)
	}
	return nil
}

func scanEntry(row repokit.Row) (*domain.Entry, error) {
	var e domain.Entry
	var orig *string
	err := row.Scan(&e.ID, &e.URL, &e.Title, &orig, &e.Reason, &e.Attempts, &e.FirstSeen, &e.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perr.ErrNotFound
		}
		return nil, perr.FromPostgres(err, "scan unfindable url")
	}
	e.OriginalTitle = pstrings.Deref(orig)
	return &e, nil
}
