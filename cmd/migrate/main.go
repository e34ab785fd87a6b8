package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"example.com/debt-tracker/internal/config"
	"example.com/debt-tracker/internal/database"
)

var flagSteps int

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply debt-tracker database migrations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *database.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSteps <= 0 {
			return fmt.Errorf("--steps must be positive")
		}
		return withMigrator(func(m *database.Migrator) error {
			if err := m.Down(flagSteps); err != nil {
				return err
			}
			return printVersion(cmd, m)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *database.Migrator) error {
			return printVersion(cmd, m)
		})
	},
}

func init() {
	downCmd.Flags().IntVar(&flagSteps, "steps", 1, "Number of migrations to roll back")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func withMigrator(run func(m *database.Migrator) error) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	m, err := database.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	return run(m)
}

func printVersion(cmd *cobra.Command, m *database.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}
