// Package module wires the ops API
package module

import (
	"cartelera/internal/modkit"
	phttp "cartelera/internal/platform/net/http"
	budgetsvc "cartelera/internal/services/budget/service"
	ingestdomain "cartelera/internal/services/ingest/domain"
	ingestsvc "cartelera/internal/services/ingest/service"
	issuesvc "cartelera/internal/services/issues/service"
	negsvc "cartelera/internal/services/negcache/service"
	opshttp "cartelera/internal/services/ops/http"
)

// Module mounts the operational endpoints under /ops
type Module struct {
	deps     modkit.Deps
	runner   *ingestsvc.Runner
	sources  map[string]ingestdomain.Source
	negcache *negsvc.Service
	issues   *issuesvc.Service
	budget   *budgetsvc.Service
}

var _ modkit.Module = (*Module)(nil)

// New constructs the ops module. sources maps source names to their
// registered ingestion strategies
func New(
	deps modkit.Deps,
	runner *ingestsvc.Runner,
	sources map[string]ingestdomain.Source,
	negcache *negsvc.Service,
	issues *issuesvc.Service,
	budget *budgetsvc.Service,
) *Module {
	return &Module{
		deps:     deps,
		runner:   runner,
		sources:  sources,
		negcache: negcache,
		issues:   issues,
		budget:   budget,
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "ops" }

// Ports satisfies modkit.Module; ops exposes no ports to other modules
func (m *Module) Ports() any { return nil }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r phttp.Router) {
	r.Route("/ops", func(rr phttp.Router) {
		opshttp.Register(rr, m.runner, m.sources, m.negcache, m.issues, m.budget)
	})
}
