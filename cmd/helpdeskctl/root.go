package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lorrc/helpdesk-core/internal/config"
	"github.com/lorrc/helpdesk-core/internal/infrastructure/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "helpdeskctl",
	Short: "Operate the helpdesk ticket service",
	Long: `helpdeskctl runs maintenance tasks against the helpdesk database.

Configuration is read from the same environment variables as the API
server (DATABASE_URL, JWT_SECRET, ...). A .env file is loaded when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			return err
		}
		// A missing env file is fine; the environment may already be set.
		_ = godotenv.Load(envFile)

		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		slog.SetDefault(logging.NewLogger(logging.Config{
			Level:       level,
			Format:      "text",
			Output:      os.Stderr,
			ServiceName: "helpdeskctl",
		}))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to an env file with service configuration")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadDatabaseConfig reads the environment and checks only what database
// commands need.
func loadDatabaseConfig() (*config.Config, error) {
	cfg := config.FromEnv()
	if cfg.Database.URL == "" {
		return nil, errMissing("DATABASE_URL")
	}
	return cfg, nil
}

func errMissing(key string) error {
	return fmt.Errorf("%s is required", key)
}
