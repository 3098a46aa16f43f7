package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVenuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "venues",
		Short: "Manage the venue registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newVenuesLoadCommand())
	return cmd
}

func newVenuesLoadCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert venues from a TOML seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			count, err := a.venues.LoadFile(ctx, file)
			if err != nil {
				return err
			}
			fmt.Printf("loaded %d venues from %s\n", count, file)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "venues.toml", "path to the venue seed file")
	return cmd
}
