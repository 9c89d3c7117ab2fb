// Command bot runs the WhatsApp rent collection bot.
package main

import (
	"fmt"
	"os"

	"github.com/rentbot/backend/internal/infrastructure/config"
	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is set at build time
var Version = "dev"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "bot",
		Short:         "WhatsApp rent collection bot",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCmd().RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.toml (default: ./config.toml or /app/config.toml)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(setupCmd())
	rootCmd.AddCommand(logoutCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and builds the logger
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
		Name:       cfg.App.Name,
		Fields:     map[string]string{"env": cfg.App.Env},
		Sample:     cfg.App.Env == "production",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
