// Package service tracks external API usage per service per day
package service

import (
	"context"

	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	"cartelera/internal/services/budget/domain"
)

// Service fronts the call counter repo
type Service struct {
	deps modkit.Deps
	repo repokit.Binder[domain.Repo]
}

// New constructs the budget service
func New(deps modkit.Deps, repo repokit.Binder[domain.Repo]) *Service {
	return &Service{deps: deps, repo: repo}
}

// Increment records one outbound call for service, keyed to today
func (s *Service) Increment(ctx context.Context, service string) error {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.Increment(ctx, service)
}

// DailyCounts returns recent per-day usage for service, newest first
func (s *Service) DailyCounts(ctx context.Context, service string, days int) ([]domain.Counter, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.DailyCounts(ctx, service, days)
}

// Total returns the all-time recorded call count for service
func (s *Service) Total(ctx context.Context, service string) (int64, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.Total(ctx, service)
}
