package main

import (
	"github.com/gNutty/vesselradar/pkg/database"
	"github.com/spf13/cobra"
)

func newMigrateCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*envFile)
			if err != nil {
				return err
			}

			db, err := database.Open(cmd.Context(), databaseConfig(cfg), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return migrate(cfg, db, logger)
		},
	}
}
