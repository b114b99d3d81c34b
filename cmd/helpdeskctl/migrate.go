package main

import (
	"fmt"

	"github.com/lorrc/helpdesk-core/internal/adapters/secondary/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return err
		}
		dir, err := migrationsDir(cmd, cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}

		applied, err := postgres.MigrateUp(cfg.Database.URL, dir)
		if err != nil {
			return err
		}
		if !applied {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}
		return printVersion(cmd, cfg.Database.URL, dir)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := cmd.Flags().GetInt("steps")
		if err != nil {
			return err
		}
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return err
		}
		dir, err := migrationsDir(cmd, cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}

		if err := postgres.MigrateDown(cfg.Database.URL, dir, steps); err != nil {
			return err
		}
		return printVersion(cmd, cfg.Database.URL, dir)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadDatabaseConfig()
		if err != nil {
			return err
		}
		dir, err := migrationsDir(cmd, cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}
		return printVersion(cmd, cfg.Database.URL, dir)
	},
}

func init() {
	migrateCmd.PersistentFlags().String("dir", "", "Migrations directory (defaults to DB_MIGRATIONS_PATH)")
	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

func migrationsDir(cmd *cobra.Command, fallback string) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		return fallback, nil
	}
	return dir, nil
}

func printVersion(cmd *cobra.Command, databaseURL, dir string) error {
	version, dirty, err := postgres.MigrationVersion(databaseURL, dir)
	if err != nil {
		return err
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d\n", version)
	return nil
}
