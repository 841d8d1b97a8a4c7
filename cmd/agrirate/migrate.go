package main

import (
	"github.com/spf13/cobra"

	"github.com/agrirate/agrirate/internal/config"
	"github.com/agrirate/agrirate/internal/store"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.AddCommand(
		migrateDirectionCmd("up", "Apply all up migrations", store.Up),
		migrateDirectionCmd("down", "Revert all migrations", store.Down),
	)
	return cmd
}

func migrateDirectionCmd(use, short string, dir store.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return store.Migrate(cfg.DBURL, dir, logger.Named("migrate"))
		},
	}
}
