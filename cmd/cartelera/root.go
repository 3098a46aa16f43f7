package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cartelera",
		Short:         "Showtime ingestion and catalog resolution",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newIngestCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newVenuesCommand())

	return rootCmd
}
