package cmd

import (
	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}

	log.Info().Msg("Running database migrations")
	if err := models.SetupModels(db); err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
