package main

import (
	"fmt"

	"github.com/rentbot/backend/internal/infrastructure/logger"
	"github.com/rentbot/backend/internal/infrastructure/whatsapp"
	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Unlink this device from WhatsApp and clear the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync(log)
			}()

			wa, err := whatsapp.New(cmd.Context(), cfg.Channel, log)
			if err != nil {
				return err
			}
			defer wa.Close()

			if err := wa.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Run `bot run` to pair again.")
			return nil
		},
	}
}
