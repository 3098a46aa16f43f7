package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newIngestCommand() *cobra.Command {
	var venueSlug string

	cmd := &cobra.Command{
		Use:   "ingest <source>",
		Short: "Run ingestion for one source, optionally limited to one venue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			name := args[0]
			src, ok := a.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown source %q (registered: %s)",
					name, strings.Join(a.registry.Names(), ", "))
			}

			runner, err := a.newRunner()
			if err != nil {
				return err
			}

			if venueSlug != "" {
				saved, err := runner.RunVenue(ctx, src, venueSlug)
				if err != nil {
					return err
				}
				fmt.Printf("venue %s: %d events saved\n", venueSlug, saved)
				return nil
			}

			summary, err := runner.Run(ctx, src)
			if err != nil {
				return err
			}
			fmt.Printf("events saved:  %d\n", summary.TotalEvents)
			fmt.Printf("catalog calls: %d\n", summary.CatalogCalls)
			if len(summary.NewMovies) > 0 {
				fmt.Printf("new movies:    %s\n", strings.Join(summary.NewMovies, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&venueSlug, "venue", "", "process only the venue with this slug")
	return cmd
}
