// Package repo provides Postgres bindings for the operational issue log
package repo

import (
	"context"
	"encoding/json"

	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	pstrings "cartelera/internal/platform/strings"
	"cartelera/internal/services/issues/domain"

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

func (r *queries) Insert(ctx context.Context, issue *domain.Issue) error {
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}

	var issueCtx []byte
	if len(issue.Context) > 0 {
		b, err := json.Marshal(issue.Context)
		if err != nil {
			return perr.JSONErrf("marshal issue context: %v", err)
		}
		issueCtx = b
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO operational_issues (id, name, task, message, trace, context, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, issue.ID, issue.Name, issue.Task, issue.Message,
		pstrings.SQLNull(issue.Trace), issueCtx, issue.Severity)
	if err != nil {
		return perr.FromPostgres(err, "insert issue")
	}
	return nil
}

func (r *queries) List(ctx context.Context, f domain.Filter) ([]domain.Issue, int, error) {
	where := ` WHERE ($1 = '' OR severity = $1) AND ($2 = '' OR task = $2)`

	var total int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM operational_issues`+where,
		f.Severity, f.Task).Scan(&total)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "count issues")
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, name, task, message, trace, context, severity, created_at
		FROM operational_issues`+where+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, f.Severity, f.Task, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, perr.FromPostgres(err, "list issues")
	}
	defer rows.Close()

	var out []domain.Issue
	for rows.Next() {
		var (
			is       domain.Issue
			trace    *string
			issueCtx []byte
		)
		if err := rows.Scan(&is.ID, &is.Name, &is.Task, &is.Message, &trace, &issueCtx, &is.Severity, &is.CreatedAt); err != nil {
			return nil, 0, perr.FromPostgres(err, "scan issue")
		}
		is.Trace = pstrings.Deref(trace)
		if len(issueCtx) > 0 {
			if err := json.Unmarshal(issueCtx, &is.Context); err != nil {
				return nil, 0, perr.JSONErrf("unmarshal issue context: %v", err)
			}
		}
		out = append(out, is)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, perr.FromPostgres(err, "iterate issues")
	}
	return out, total, nil
}
