// Package service exposes negative cache operations to resolution and ops
package service

import (
	"context"

	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/negcache/domain"
)

// Service fronts the negative cache repo
type Service struct {
	deps modkit.Deps
	repo repokit.Binder[domain.Repo]
}

// New constructs the negative cache service
func New(deps modkit.Deps, repo repokit.Binder[domain.Repo]) *Service {
	return &Service{deps: deps, repo: repo}
}

// Touch increments attempts for a cached url and reports whether it was cached
func (s *Service) Touch(ctx context.Context, url string) (bool, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.Touch(ctx, url)
}

// Record memoizes a url that could not be resolved
func (s *Service) Record(ctx context.Context, url, title, originalTitle, reason string) error {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.Record(ctx, url, title, originalTitle, reason)
}

// List pages through cached entries, newest activity first
func (s *Service) List(ctx context.Context, limit, offset int) ([]domain.Entry, int, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.List(ctx, limit, offset)
}

// Reset drops the entry for url so the next run retries the lookup
func (s *Service) Reset(ctx context.Context, url string) error {
	r := repokit.MustBind(s.repo, s.deps.PG)
	if err := r.Delete(ctx, url); err != nil {
		return err
	}
	logger.C(ctx).Info().Str("url", url).Msg("negative cache entry reset")
	return nil
}
