package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrirate/agrirate/internal/config"
	"github.com/agrirate/agrirate/internal/repository"
	"github.com/agrirate/agrirate/internal/service"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newSetRoleCmd())
	return cmd
}

func newSetRoleCmd() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:     "set-role",
		Short:   "Assign user, rater or admin to an account",
		Example: "  agrirate users set-role --email tani@example.com --role rater",
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

			accounts := service.NewAccountService(repository.New(st), nil, logger)
			user, err := accounts.SetRole(cmd.Context(), email, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", "", "one of user, rater, admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
