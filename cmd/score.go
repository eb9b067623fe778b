package cmd

import (
	"context"
	"fmt"
	"time"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/cache"
	"example.com/warehouse/services/arrivals/internal/metrics"
	"example.com/warehouse/services/arrivals/internal/search"
	"example.com/warehouse/services/arrivals/internal/services"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	scoreMonth int
	scoreYear  int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Run supplier scoring for one period",
	Long:  `Run the supplier performance scoring for a single month and exit. Defaults to the previous month.`,
	RunE:  runScore,
}

func init() {
	previous := time.Now().AddDate(0, -1, 0)
	scoreCmd.Flags().IntVar(&scoreMonth, "month", int(previous.Month()), "month to score (1-12)")
	scoreCmd.Flags().IntVar(&scoreYear, "year", previous.Year(), "year to score")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	if scoreMonth < 1 || scoreMonth > 12 {
		return fmt.Errorf("invalid month %d", scoreMonth)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	db, readOnlyDB, err := initDatabases(cfg)
	if err != nil {
		return err
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	}

	arrivalService := services.NewArrivalService(db, readOnlyDB, redisCache, elasticClient, metrics.NewMetrics(), tracer)

	summary, err := arrivalService.RunSupplierScoring(context.Background(), time.Month(scoreMonth), scoreYear)
	if err != nil {
		return err
	}

	log.Info().
		Int("month", scoreMonth).
		Int("year", scoreYear).
		Int("suppliers", summary.Suppliers).
		Int("written", summary.Written).
		Int("ranked", summary.Ranked).
		Msg("Supplier scoring completed")
	return nil
}
