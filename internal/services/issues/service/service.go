// Package service records and lists operational issues.
//
// Warn and Error are fire-and-forget: a failed insert is logged but never
// surfaced, so issue recording can never break the run that triggered it
package service

import (
	"context"

	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/issues/domain"
)

// Service fronts the issue log repo
type Service struct {
	deps modkit.Deps
	repo repokit.Binder[domain.Repo]
}

// New constructs the issues service
func New(deps modkit.Deps, repo repokit.Binder[domain.Repo]) *Service {
	return &Service{deps: deps, repo: repo}
}

// Warn appends a warning-severity issue
func (s *Service) Warn(ctx context.Context, name, task, message string, context map[string]any) {
	s.record(ctx, &domain.Issue{
		Name:     name,
		Task:     task,
		Message:  message,
		Context:  context,
		Severity: domain.SeverityWarning,
	})
}

// Error appends an error-severity issue with an optional trace
func (s *Service) Error(ctx context.Context, name, task, message, trace string, context map[string]any) {
	s.record(ctx, &domain.Issue{
		Name:     name,
		Task:     task,
		Message:  message,
		Trace:    trace,
		Context:  context,
		Severity: domain.SeverityError,
	})
}

// List pages through issues, newest first
func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.Issue, int, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.List(ctx, f)
}

func (s *Service) record(ctx context.Context, issue *domain.Issue) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	if err := r.Insert(ctx, issue); err != nil {
		logger.C(ctx).Error().
			Err(err).
			Str("issue", issue.Name).
			Str("task", issue.Task).
			Msg("issue insert failed")
	}
}
