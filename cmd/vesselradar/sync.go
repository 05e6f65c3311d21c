package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

func newSyncCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one batch sync and print the report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.WithoutCancel(ctx)); err != nil {
					logger.WithError(err).Warn("Failed to release dependencies")
				}
			}()

			report, err := a.syncer.Run(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
