// Entry point for the worker mailing the end of work summary
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"

	"hrtime.service/internal/config"
	"hrtime.service/internal/core"
	"hrtime.service/internal/ports/repository"
	"hrtime.service/internal/worker"
	"hrtime.service/internal/worker/email"
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

	logger.Setup("hrtime-notify-worker", cfg.IsLocalDev)

	shutdownTracer, err := telemetry.InitTracer("hrtime-notify-worker", cfg.OTLPEndpoint, cfg.IsLocalDev)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB connection
	db, err := database.NewInstrumentedConnection(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Initialize Dependencies
	emailService := core.NewSESEmailService(ses.NewFromConfig(awsCfg), cfg.EmailSender)
	processor := email.NewProcessor(emailService, repository.NewEmployeeRepository(db), repository.NewWorklogRepository(db))
	app := worker.NewWorker(sqs.NewFromConfig(awsCfg), cfg.CheckinSQSQueueURL, processor)

	stopped := make(chan struct{})
	go func() {
		app.Start(ctx)
		close(stopped)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()
	<-stopped

	log.Info().Msg("Worker exited gracefully")
}
