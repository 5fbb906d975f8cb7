package main

import (
	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/db"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a dev database with sample parking sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			conn, err := db.Open(cmd.Context(), db.Config{Path: cfg.DBPath})
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := db.SeedDev(cmd.Context(), conn); err != nil {
				return err
			}
			cmd.Println("seeded", cfg.DBPath)
			return nil
		},
	}
}
