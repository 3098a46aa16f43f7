package main

import (
	"context"

	"cartelera/internal/adapters/catalog/tmdb"
	"cartelera/internal/modkit"
	"cartelera/internal/platform/config"
	"cartelera/internal/platform/logger"
	"cartelera/internal/platform/store"
	budgetrepo "cartelera/internal/services/budget/repo"
	budgetsvc "cartelera/internal/services/budget/service"
	ingestsvc "cartelera/internal/services/ingest/service"
	issuerepo "cartelera/internal/services/issues/repo"
	issuesvc "cartelera/internal/services/issues/service"
	moviesmodule "cartelera/internal/services/movies/module"
	negrepo "cartelera/internal/services/negcache/repo"
	negsvc "cartelera/internal/services/negcache/service"
	showtimesrepo "cartelera/internal/services/showtimes/repo"
	showtimessvc "cartelera/internal/services/showtimes/service"
	venuerepo "cartelera/internal/services/venues/repo"
	venuesvc "cartelera/internal/services/venues/service"

	"github.com/joho/godotenv"
)

// app wires the platform store and the services every command shares
type app struct {
	cfg  config.Conf
	st   *store.Store
	deps modkit.Deps

	negcache  *negsvc.Service
	budget    *budgetsvc.Service
	issues    *issuesvc.Service
	venues    *venuesvc.Service
	showtimes *showtimessvc.Service

	registry *ingestsvc.Registry
}

// newApp boots logging, config and the store. The catalog client is built
// separately because not every command needs a token
func newApp(ctx context.Context) (*app, error) {
	// missing .env is fine; real deployments use the environment
	_ = godotenv.Load()
	logger.Init(logger.FromEnv())

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	st, err := store.Open(ctx, store.Config{
		AppName: "cartelera",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
		},
	}, store.WithLogger(*logger.Get()))
	if err != nil {
		return nil, err
	}

	deps := modkit.Deps{Log: *logger.Get(), Cfg: root, PG: st.PG}

	a := &app{
		cfg:       root,
		st:        st,
		deps:      deps,
		negcache:  negsvc.New(deps, negrepo.NewPG()),
		budget:    budgetsvc.New(deps, budgetrepo.NewPG()),
		issues:    issuesvc.New(deps, issuerepo.NewPG()),
		venues:    venuesvc.New(deps, venuerepo.NewPG()),
		showtimes: showtimessvc.New(deps, showtimesrepo.NewPG()),
		registry:  ingestsvc.NewRegistry(),
	}
	registerSources(a)
	return a, nil
}

// newRunner builds the catalog client and the resolution stack.
// CATALOG_TOKEN must be set for any command that reaches here
func (a *app) newRunner() (*ingestsvc.Runner, error) {
	catalog, err := tmdb.New(tmdb.FromConf(a.cfg))
	if err != nil {
		return nil, err
	}

	movies := moviesmodule.New(a.deps, catalog, a.negcache, a.budget, a.issues)
	ports := movies.Ports().(moviesmodule.Ports)
	return ingestsvc.New(a.deps, ports.Resolver, a.venues, a.issues), nil
}

func (a *app) close(ctx context.Context) {
	if err := a.st.Close(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("store close failed")
	}
}

// registerSources is the integration point for scraper strategies.
// Concrete sources live in their own packages and are added here
func registerSources(a *app) {
	// no sources ship with the core
	_ = a
}
