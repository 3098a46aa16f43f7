package service

import (
	"sort"

	"cartelera/internal/services/ingest/domain"
)

// Registry holds the ingestion strategies known to this binary.
// Scraper integrations register themselves here; the core ships none
type Registry struct {
	sources map[string]domain.Source
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]domain.Source)}
}

// Register adds src under its Name; a second registration replaces the first
func (r *Registry) Register(src domain.Source) {
	r.sources[src.Name()] = src
}

// Get returns the source registered under name
func (r *Registry) Get(name string) (domain.Source, bool) {
	src, ok := r.sources[name]
	return src, ok
}

// Names returns the registered source names in sorted order
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sources))
	for name := range r.sources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Map exposes the registry as a plain map for route wiring
func (r *Registry) Map() map[string]domain.Source {
	return r.sources
}
