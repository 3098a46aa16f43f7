// Package domain holds external call budget types and ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Counter is one (service, day) usage row
type Counter struct {
	ID           uuid.UUID
	ServiceName  string
	Day          time.Time
	CallCount    int64
	LastCalledAt time.Time
}

// Repo is the persistence surface for call counters
type Repo interface {
	// Increment adds one call to today's counter for service.
	// The upsert is atomic: concurrent increments never lose counts
	Increment(ctx context.Context, service string) error

	// DailyCounts returns the most recent day rows for service, newest first
	DailyCounts(ctx context.Context, service string, days int) ([]Counter, error)

	// Total sums all recorded calls for service
	Total(ctx context.Context, service string) (int64, error)
}
