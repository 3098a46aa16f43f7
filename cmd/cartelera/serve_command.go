package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"cartelera/internal/platform/logger"
	phttp "cartelera/internal/platform/net/http"
	"cartelera/internal/platform/net/middleware"
	opsmodule "cartelera/internal/services/ops/module"

	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the ops API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if err := a.st.Guard(ctx); err != nil {
				return err
			}

			runner, err := a.newRunner()
			if err != nil {
				return err
			}

			srv := phttp.NewServer(a.cfg)
			r := srv.Router()
			r.Use(middleware.Defaults()...)
			r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
			r.Use(middleware.CORS(middleware.CORSOptions{
				AllowedOrigins: a.cfg.MayCSV("OPS_CORS_ORIGINS", []string{"*"}),
			}))
			r.Use(middleware.Heartbeat("/healthz"))

			ops := opsmodule.New(a.deps, runner, a.registry.Map(), a.negcache, a.issues, a.budget)
			ops.MountRoutes(r)

			errc := make(chan error, 1)
			go func() { errc <- srv.Run(ctx) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			logger.Get().Info().Msg("shutting down")
			return srv.Shutdown(shutCtx)
		},
	}
}
