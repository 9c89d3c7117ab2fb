// Command migrate manages the rent bot database schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rentbot/backend/internal/infrastructure/config"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile  string
	databaseURL string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Rent bot database migration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Applies the schema migrations embedded in the binary.

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Check current version
  migrate version`,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.toml")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (overrides configuration)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		withMigrator("up", "Apply all pending migrations", cobra.NoArgs,
			func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up(ctx) }),
		withMigrator("down", "Roll back all migrations", cobra.NoArgs,
			func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down(ctx) }),
		withMigrator("step <n>", "Apply n migrations (positive=up, negative=down)", cobra.ExactArgs(1),
			func(ctx context.Context, m *migration.Migrator, _ *zap.Logger, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(ctx, n)
			}),
		withMigrator("version", "Show current migration version", cobra.NoArgs,
			func(_ context.Context, m *migration.Migrator, log *zap.Logger, _ []string) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					log.Info("No migrations applied")
					return nil
				}
				log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			}),
		withMigrator("force <version>", "Force set migration version (use with caution)", cobra.ExactArgs(1),
			func(_ context.Context, m *migration.Migrator, _ *zap.Logger, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version number %q", args[0])
				}
				return m.Force(version)
			}),
		listCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	return logger.New(&logger.Config{
		Level:      logLevel,
		Format:     logger.FormatConsole,
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
		Name:       "migrate",
	})
}

// resolveDSN prefers --database-url and otherwise reads configuration
func resolveDSN() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	db, err := config.LoadDatabase(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return db.DSN(), nil
}

// withMigrator builds a subcommand that runs fn against an open migrator
func withMigrator(use, short string, args cobra.PositionalArgs, fn func(context.Context, *migration.Migrator, *zap.Logger, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync(log)
			}()

			dsn, err := resolveDSN()
			if err != nil {
				return err
			}
			m, err := migration.NewFromURL(dsn, log)
			if err != nil {
				return fmt.Errorf("failed to create migrator: %w", err)
			}
			defer func() {
				if err := m.Close(); err != nil {
					log.Warn("Error closing migrator", zap.Error(err))
				}
			}()

			log.Info("Migration CLI started", zap.String("command", cmd.Name()))
			return fn(cmd.Context(), m, log, args)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List migrations embedded in this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			migrations, err := migration.Available()
			if err != nil {
				return err
			}
			if len(migrations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations found")
				return nil
			}
			for _, mig := range migrations {
				fmt.Fprintf(cmd.OutOrStdout(), "  %06d  %s\n", mig.Version, mig.Name)
			}
			return nil
		},
	}
}
