// Package domain holds showtime snapshot types and ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one screening of a movie at a venue.
// StartTime is wall-clock "HH:MM" in the venue's local zone; scraped sources
// carry no offset information
type Event struct {
	ID        uuid.UUID
	VenueID   uuid.UUID
	MovieID   uuid.UUID
	StartDate time.Time
	StartTime string

	Format          string
	TranslationType string
	Screen          string
	SourceURL       string

	CreatedAt time.Time
}

// Repo is the persistence surface for venue event snapshots.
// Callers are expected to run Delete*/Insert pairs inside one transaction
type Repo interface {
	// DeleteForVenue removes every event row for the venue
	DeleteForVenue(ctx context.Context, venueID uuid.UUID) (int64, error)

	// DeleteForVenueDates removes the venue's rows for exactly the given dates
	DeleteForVenueDates(ctx context.Context, venueID uuid.UUID, dates []time.Time) (int64, error)

	// Insert appends one event row
	Insert(ctx context.Context, e *Event) error

	// ListForVenue returns the venue's events ordered by date then time
	ListForVenue(ctx context.Context, venueID uuid.UUID) ([]Event, error)
}
