// Package service implements atomic showtime snapshot replacement
package service

import (
	"context"
	"time"

	"cartelera/internal/modkit"
	"cartelera/internal/modkit/repokit"
	"cartelera/internal/platform/logger"
	"cartelera/internal/services/showtimes/domain"

	"github.com/google/uuid"
)

// Service replaces venue event sets. Every replace is one transaction:
// readers see the full old snapshot or the full new one, never a mix, and
// a failed run leaves the old snapshot in place
type Service struct {
	deps modkit.Deps
	repo repokit.Binder[domain.Repo]
}

// New constructs the showtimes service
func New(deps modkit.Deps, repo repokit.Binder[domain.Repo]) *Service {
	return &Service{deps: deps, repo: repo}
}

// ReplaceForVenue swaps the venue's entire event set for events and returns
// the saved count
func (s *Service) ReplaceForVenue(ctx context.Context, venueID uuid.UUID, events []domain.Event) (int, error) {
	return s.replace(ctx, venueID, nil, events)
}

// ReplaceForDates swaps only the venue's rows for the given dates. Sources
// that scrape day by day use this so untouched days survive the run
func (s *Service) ReplaceForDates(ctx context.Context, venueID uuid.UUID, dates []time.Time, events []domain.Event) (int, error) {
	return s.replace(ctx, venueID, dates, events)
}

// ListForVenue returns the venue's current snapshot
func (s *Service) ListForVenue(ctx context.Context, venueID uuid.UUID) ([]domain.Event, error) {
	r := repokit.MustBind(s.repo, s.deps.PG)
	return r.ListForVenue(ctx, venueID)
}

func (s *Service) replace(ctx context.Context, venueID uuid.UUID, dates []time.Time, events []domain.Event) (int, error) {
	log := logger.C(ctx)

	err := repokit.WithTx(ctx, s.deps.PG, func(q repokit.Queryer) error {
		r := s.repo.Bind(q)

		var (
			deleted int64
			err     error
		)
		if dates == nil {
			deleted, err = r.DeleteForVenue(ctx, venueID)
		} else {
			deleted, err = r.DeleteForVenueDates(ctx, venueID, dates)
		}
		if err != nil {
			return err
		}
		if deleted > 0 {
			log.Debug().Str("venue_id", venueID.String()).Int64("deleted", deleted).Msg("cleared prior showtimes")
		}

		for i := range events {
			events[i].VenueID = venueID
			if err := r.Insert(ctx, &events[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Str("venue_id", venueID.String()).Int("saved", len(events)).Msg("showtimes replaced")
	return len(events), nil
}
