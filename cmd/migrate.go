package cmd

import (
	"fmt"

	dbadapter "github.com/kasuganosora/weaponpaints/db"
	"github.com/kasuganosora/weaponpaints/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the customization tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := dbadapter.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if err := model.AutoMigrate(db); err != nil {
			return fmt.Errorf("db migrate: %w", err)
		}
		logger.Info("tables migrated", zap.String("mode", cfg.Database.Mode))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
