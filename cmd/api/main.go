// Entry point for REST API
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hrtime.service/internal/api"
	"hrtime.service/internal/api/handler"
	"hrtime.service/internal/config"
	"hrtime.service/internal/core"
	"hrtime.service/internal/ports/messaging"
	"hrtime.service/internal/ports/repository"
	"hrtime.service/pkg/aws"
	"hrtime.service/pkg/database"
	"hrtime.service/pkg/logger"
	"hrtime.service/pkg/telemetry"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup("hrtime-api", cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("hrtime-api", cfg.OTLPEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Error preparing database")
	}
	log.Info().Msg("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize dependencies
	clock := core.SystemClock{}
	employeeRepo := repository.NewEmployeeRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	producer := messaging.NewSQSProducer(sqs.NewFromConfig(awsCfg), cfg.CheckinSQSQueueURL)

	employees := core.NewEmployeeService(employeeRepo)
	worklogs := core.NewWorklogService(repository.NewWorklogRepository(db), clock)
	h := &handler.CheckInHandler{
		Employees: employees,
		Checkins:  core.NewCheckInService(employees, worklogs, checkinRepo, producer, clock),
		Worklogs:  worklogs,
		Reports:   core.NewReportService(employeeRepo, checkinRepo, clock),
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(api.NewRouter(h, cfg.UserHeader), "api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The server gets 5 seconds to finish the requests it is handling.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
