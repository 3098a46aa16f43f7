// Package repo provides Postgres bindings for call counters
package repo

import (
	"context"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/services/budget/domain"

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

func (r *queries) Increment(ctx context.Context, service string) error {
	// current_date keys the row so day rollover needs no app-side clock
	_, err := r.q.Exec(ctx, `
		INSERT INTO api_call_counters (id, service_name, day, call_count, last_called_at)
		VALUES ($1, $2, current_date, 1, now())
		ON CONFLICT (service_name, day) DO UPDATE SET
			call_count = api_call_counters.call_count + 1,
			last_called_at = now()
	`, uuid.New(), service)
	if err != nil {
		return perr.FromPostgres(err, "increment call counter")
	}
	return nil
}

func (r *queries) DailyCounts(ctx context.Context, service string, days int) ([]domain.Counter, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, service_name, day, call_count, last_called_at
		FROM api_call_counters
		WHERE service_name = $1
		ORDER BY day DESC
		LIMIT $2
	`, service, days)
	if err != nil {
		return nil, perr.FromPostgres(err, "list call counters")
	}
	defer rows.Close()

	var out []domain.Counter
	for rows.Next() {
		var c domain.Counter
		if err := rows.Scan(&c.ID, &c.ServiceName, &c.Day, &c.CallCount, &c.LastCalledAt); err != nil {
			return nil, perr.FromPostgres(err, "scan call counter")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "iterate call counters")
	}
	return out, nil
}

func (r *queries) Total(ctx context.Context, service string) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `
		SELECT coalesce(sum(call_count), 0)
		FROM api_call_counters
		WHERE service_name = $1
	`, service).Scan(&total)
	if err != nil {
		return 0, perr.FromPostgres(err, "sum call counters")
	}
	return total, nil
}
