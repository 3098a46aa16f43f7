// Package service manages the venue registry and its seed loader
package service

import (
	"context"
	"os"

	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	perr "cartelera/internal/platform/errors"
	"cartelera/internal/platform/logger"
	"cartelera/internal/platform/net/http/bind"
	"cartelera/internal/services/venues/domain"

	"github.com/pelletier/go-toml/v2"
)

// Service fronts the venue registry repo
type Service struct {
	deps modkit.Deps
	repo repokit.Binder[domain.Repo]
}

// New constructs the venues service
func New(deps modkit.Deps, repo repokit.Binder[domain.Repo]) *Service {
	return &Service{deps: deps, repo: repo}
}

// ListBySource returns active venues for source in slug order
func (s *Service) ListBySource(ctx context.Context, source string) ([]domain.Venue, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.ListBySource(ctx, source)
}

// GetBySlug returns the venue with slug, or ErrorCodeNotFound
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Venue, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.GetBySlug(ctx, slug)
}

// seedFile is the on-disk TOML shape consumed by `venues load`
type seedFile struct {
	Venues []seedVenue `toml:"venues"`
}

type seedVenue struct {
	Name      string `toml:"name"       validate:"required"`
	Slug      string `toml:"slug"       validate:"required"`
	Chain     string `toml:"chain"`
	Address   string `toml:"address"`
	City      string `toml:"city"       validate:"required"`
	Source    string `toml:"source"     validate:"required"`
	SourceRef string `toml:"source_ref"`
	Active    *bool  `toml:"active"`
}

// LoadFile upserts every venue declared in the TOML seed at path.
// Venues default to active unless the entry says otherwise
func (s *Service) LoadFile(ctx context.Context, path string) (int, error) {
	log := logger.C(ctx)

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, perr.Configf("read venue seed %q: %v", path, err)
	}

	var seed seedFile
	if err := toml.Unmarshal(raw, &seed); err != nil {
		return 0, perr.Configf("parse venue seed %q: %v", path, err)
	}
	if len(seed.Venues) == 0 {
		return 0, perr.Configf("venue seed %q declares no venues", path)
	}

	r := repokit.MustBind(s.repo, s.deps.PG)
	for i := range seed.Venues {
		sv := &seed.Venues[i]
		if err := bind.Struct(sv); err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeValidation, "venue seed entry %d", i)
		}

		active := true
		if sv.Active != nil {
			active = *sv.Active
		}
		v := &domain.Venue{
			Name:      sv.Name,
			Slug:      sv.Slug,
			Chain:     sv.Chain,
			Address:   sv.Address,
			City:      sv.City,
			Source:    sv.Source,
			SourceRef: sv.SourceRef,
			Active:    active,
		}
		if err := r.Upsert(ctx, v); err != nil {
			return 0, err
		}
		log.Debug().Str("slug", v.Slug).Str("source", v.Source).Msg("venue upserted")
	}

	log.Info().Int("count", len(seed.Venues)).Str("file", path).Msg("venue seed loaded")
	return len(seed.Venues), nil
}
