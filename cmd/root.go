package cmd

import (
	"time"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/models"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "arrivals",
	Short: "Supplier arrivals service",
	Long: `Supplier arrivals service for reconciling truck deliveries against schedules.

Functions:
- Ingest delivery notes and create planned arrival records
- Classify arrival punctuality against committed schedule slots
- Evaluate end-of-day delivery compliance including catch-up deliveries
- Reconcile gate visitor logs onto arrival records
- Score supplier delivery performance monthly`,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

// initDatabases opens the write and read-only database connections and
// configures their pools. Migrations run against the write side only.
func initDatabases(cfg config.Config) (*gorm.DB, *gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to write database")
	}

	readOnlyDB, err := gorm.Open(postgres.Open(cfg.DB.ReadOnlyDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to read-only database")
	}

	// Auto-migrate only the write database
	if err := models.SetupModels(db); err != nil {
		return nil, nil, errors.Wrap(err, "failed to run migrations")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get underlying write DB connection")
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	readSqlDB, err := readOnlyDB.DB()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get underlying read-only DB connection")
	}

	// Higher limits for the read side, the batch jobs lean on it
	readSqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns * 2)
	readSqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns * 2)
	readSqlDB.SetConnMaxLifetime(time.Hour)

	return db, readOnlyDB, nil
}
