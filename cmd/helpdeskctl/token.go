package main

import (
	"fmt"
	"time"

	"github.com/lorrc/helpdesk-core/internal/auth"
	"github.com/lorrc/helpdesk-core/internal/config"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local development",
	Long: `Mint a signed access token with the service's JWT secret.

The API resolves the caller from the user directory on every request, so
the token only needs to identify the user; role and team come from the
database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := cmd.Flags().GetInt64("user-id")
		if err != nil {
			return err
		}
		login, err := cmd.Flags().GetString("login")
		if err != nil {
			return err
		}
		ttl, err := cmd.Flags().GetDuration("ttl")
		if err != nil {
			return err
		}
		if userID <= 0 && login == "" {
			return fmt.Errorf("either --user-id or --login is required")
		}

		cfg := config.FromEnv()
		if cfg.JWT.Secret == "" {
			return errMissing("JWT_SECRET")
		}

		token, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, ttl).GenerateToken(userID, login)
		if err != nil {
			return fmt.Errorf("signing token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64("user-id", 0, "Directory id of the user")
	tokenCmd.Flags().String("login", "", "Login of the user")
	tokenCmd.Flags().Duration("ttl", 8*time.Hour, "Token lifetime")
}
