// Package domain holds operational issue types and ports
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Severity levels. The log is append-only; severity is the main triage axis
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Issue is one recorded operational anomaly
type Issue struct {
	ID        uuid.UUID
	Name      string
	Task      string
	Message   string
	Trace     string
	Context   map[string]any
	Severity  string
	CreatedAt time.Time
}

// Filter narrows issue listings
type Filter struct {
	Severity string
	Task     string
	Limit    int
	Offset   int
}

// Repo is the persistence surface for the issue log
type Repo interface {
	// Insert appends one issue. Issues are never updated or deleted
	Insert(ctx context.Context, issue *Issue) error

	// List returns issues newest first, with the filtered total
	List(ctx context.Context, f Filter) ([]Issue, int, error)
}
