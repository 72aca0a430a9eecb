package cmd

import (
	"gamewish/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(rt.cfg.DatabaseDriver, rt.cfg.DatabaseDSN, rt.log)
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.Migrate(db); err != nil {
				return err
			}
			rt.log.Info("database migrated", zap.String("driver", rt.cfg.DatabaseDriver))
			return nil
		},
	}
}
