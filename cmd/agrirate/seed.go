package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrirate/agrirate/internal/config"
	"github.com/agrirate/agrirate/internal/repository"
	"github.com/agrirate/agrirate/internal/seed"
	"github.com/agrirate/agrirate/internal/service"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo products and accounts",
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

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			repo := repository.New(st)
			res, err := seed.Run(cmd.Context(), repo, service.NewRatingService(repo, logger, service.RatingOptions{}), logger.Named("seed"))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d products, %d ratings (password %q)\n",
				res.Users, res.Products, res.Ratings, seed.DemoPassword)
			return nil
		},
	}
}
