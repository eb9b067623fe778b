package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/cache"
	"example.com/warehouse/services/arrivals/internal/messaging"
	"example.com/warehouse/services/arrivals/internal/metrics"
	"example.com/warehouse/services/arrivals/internal/search"
	"example.com/warehouse/services/arrivals/internal/services"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start the background worker",
	Long:  `Start the background worker running the arrival status, visitor sync, delivery compliance and supplier scoring jobs`,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Initialize database connections
	db, readOnlyDB, err := initDatabases(cfg)
	if err != nil {
		return err
	}

	// Initialize cache
	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	// Initialize tracer
	tracer, err := tracing.NewTracer(cfg.Tracing)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
	}

	// Initialize Elasticsearch client
	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search functionality")
	}

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize services
	arrivalService := services.NewArrivalService(db, readOnlyDB, redisCache, elasticClient, metricsCollector, tracer)

	// Start the delivery-note queue processor when configured
	if cfg.Jobs.IngestQueueEnabled && cfg.Azure.QueueConnStr != "" {
		azureBus, err := messaging.NewAzureServiceBus(cfg.Azure)
		if err != nil {
			return err
		}
		g.Go(func() error {
			log.Info().Str("queue", cfg.Azure.QueueName).Msg("Starting Azure Service Bus processor")
			return azureBus.ProcessMessages(ctx, arrivalService.ProcessDeliveryNoteMessage)
		})
	}

	// Start the scheduled jobs
	g.Go(func() error {
		return runScheduledJobs(ctx, cfg.Jobs, arrivalService)
	})

	// Wait for any goroutine to exit
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker error")
		return err
	}

	log.Info().Msg("Worker shutting down gracefully")
	return nil
}

// runScheduledJobs wires the four recurring jobs onto a scheduler and blocks
// until the context is cancelled. Singleton mode keeps a slow run from
// overlapping with the next tick of the same job.
func runScheduledJobs(ctx context.Context, jobs config.JobsConfig, arrivalService *services.ArrivalService) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	// Arrival status classification, hourly
	_, err = scheduler.NewJob(
		gocron.DurationJob(jobs.StatusInterval),
		gocron.NewTask(func() {
			if _, err := arrivalService.RunArrivalStatus(ctx, time.Now()); err != nil {
				log.Error().Err(err).Msg("Arrival status job failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	// Visitor reconciliation, hourly, check-ins then check-outs
	_, err = scheduler.NewJob(
		gocron.DurationJob(jobs.VisitorInterval),
		gocron.NewTask(func() {
			day := time.Now()
			if _, err := arrivalService.RunVisitorSync(ctx, day, services.SyncCheckin); err != nil {
				log.Error().Err(err).Msg("Visitor check-in sync failed")
			}
			if _, err := arrivalService.RunVisitorSync(ctx, day, services.SyncCheckout); err != nil {
				log.Error().Err(err).Msg("Visitor check-out sync failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	// Delivery compliance, end of day
	_, err = scheduler.NewJob(
		gocron.CronJob(jobs.ComplianceCron, false),
		gocron.NewTask(func() {
			if _, err := arrivalService.RunDeliveryCompliance(ctx, time.Now()); err != nil {
				log.Error().Err(err).Msg("Delivery compliance job failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	// Supplier scoring for the previous month, on the 1st
	_, err = scheduler.NewJob(
		gocron.CronJob(jobs.ScoringCron, false),
		gocron.NewTask(func() {
			previous := time.Now().AddDate(0, -1, 0)
			if _, err := arrivalService.RunSupplierScoring(ctx, previous.Month(), previous.Year()); err != nil {
				log.Error().Err(err).Msg("Supplier scoring job failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	log.Info().
		Dur("status_interval", jobs.StatusInterval).
		Dur("visitor_interval", jobs.VisitorInterval).
		Str("compliance_cron", jobs.ComplianceCron).
		Str("scoring_cron", jobs.ScoringCron).
		Msg("Scheduled jobs started")

	<-ctx.Done()

	return scheduler.Shutdown()
}
