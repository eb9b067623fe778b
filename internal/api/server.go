package api

import (
	"context"
	"net/http"
	"time"

	"example.com/warehouse/services/arrivals/config"
	"example.com/warehouse/services/arrivals/internal/api/handlers"
	"example.com/warehouse/services/arrivals/internal/metrics"
	"example.com/warehouse/services/arrivals/internal/services"
	"example.com/warehouse/services/arrivals/internal/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Server represents the HTTP server
type Server struct {
	config         config.Config
	router         *gin.Engine
	httpServer     *http.Server
	arrivalService *services.ArrivalService
	metrics        *metrics.Metrics
	tracer         tracing.Tracer
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, arrivalService *services.ArrivalService, metricsCollector *metrics.Metrics, tracer tracing.Tracer) *Server {
	server := &Server{
		config:         cfg,
		arrivalService: arrivalService,
		metrics:        metricsCollector,
		tracer:         tracer,
	}

	router := server.setupRouter()
	server.router = router

	httpServer := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}
	server.httpServer = httpServer

	return server
}

// setupRouter configures the HTTP router
func (s *Server) setupRouter() *gin.Engine {
	router := gin.Default()

	// Recovery middleware
	router.Use(gin.Recovery())

	// Register handlers
	jobsHandler := handlers.NewJobsHandler(s.arrivalService, s.tracer)
	jobsHandler.RegisterRoutes(router)

	arrivalsHandler := handlers.NewArrivalsHandler(s.arrivalService, s.tracer)
	arrivalsHandler.RegisterRoutes(router)

	performanceHandler := handlers.NewPerformanceHandler(s.arrivalService)
	performanceHandler.RegisterRoutes(router)

	metricsHandler := handlers.NewMetricsHandler(s.metrics)
	metricsHandler.RegisterRoutes(router)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Info().Str("address", s.config.ServerAddress).Msg("Starting HTTP server")

	if err := s.httpServer.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "HTTP server error")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")

	// Create a timeout context for shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "HTTP server shutdown error")
	}

	log.Info().Msg("HTTP server shut down successfully")
	return nil
}
