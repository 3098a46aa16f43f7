// Package module wires the movies service
package module

import (
	"cartelera/internal/modkit"
	phttp "cartelera/internal/platform/net/http"
	"cartelera/internal/services/movies/domain"
	"cartelera/internal/services/movies/match"
	"cartelera/internal/services/movies/repo"
	"cartelera/internal/services/movies/service"
)

// Ports exposed by the movies module
type Ports struct {
	Resolver domain.Resolver
}

// Module implements the movies service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

var _ modkit.Module = (*Module)(nil)

// New constructs the movies module around its catalog and bookkeeping ports
func New(
	deps modkit.Deps,
	catalog domain.Catalog,
	negcache domain.NegativeCache,
	budget domain.CallBudget,
	issues domain.IssueRecorder,
) *Module {
	svc := service.New(deps, repo.NewPG(), catalog, negcache, budget, issues)
	svc.MaxCreditLookups = deps.Cfg.Prefix("CORE_MATCH_").MayInt("CREDIT_LOOKUPS", match.DefaultMaxCreditLookups)
	return &Module{
		deps:  deps,
		ports: Ports{Resolver: svc},
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "movies" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; movies has no HTTP surface
func (m *Module) MountRoutes(phttp.Router) {}
