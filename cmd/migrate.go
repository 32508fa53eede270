package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psds-microservice/dispatch/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Migrate app.db and every app_YYYY_MM.db in the database directory",
	RunE:  runMigrateUp,
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	shared, err := database.Open(database.SharedPath(cfg.BaseDir))
	if err != nil {
		return fmt.Errorf("open shared store: %w", err)
	}
	defer database.Close(shared)
	if err := database.MigrateShared(ctx, shared); err != nil {
		return fmt.Errorf("migrate shared store: %w", err)
	}

	periods := database.ListPeriods(cfg.BaseDir)
	for _, p := range periods {
		db, err := database.Open(p)
		if err != nil {
			return fmt.Errorf("open %s: %w", p, err)
		}
		added, err := database.MigratePeriod(ctx, db)
		_ = database.Close(db)
		if err != nil {
			return fmt.Errorf("migrate %s: %w", p, err)
		}
		log.Info("period migrated", zap.String("file", p), zap.Strings("added_columns", added))
	}
	log.Info("migrate up: ok", zap.Int("periods", len(periods)))
	return nil
}
