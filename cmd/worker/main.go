package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sentinelworks/sentinel-backend/internal/audit"
	"github.com/sentinelworks/sentinel-backend/internal/catalog"
	"github.com/sentinelworks/sentinel-backend/internal/delivery"
	"github.com/sentinelworks/sentinel-backend/internal/pricing"
	"github.com/sentinelworks/sentinel-backend/pkg/config"
	"github.com/sentinelworks/sentinel-backend/pkg/db"
	"github.com/sentinelworks/sentinel-backend/pkg/logger"
	"github.com/sentinelworks/sentinel-backend/pkg/mailer"
	"github.com/sentinelworks/sentinel-backend/pkg/metrics"
	"github.com/sentinelworks/sentinel-backend/pkg/migrate"
	"github.com/sentinelworks/sentinel-backend/pkg/outbox"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	// The worker only reads quotations to render documents, so the pricing
	// service runs without metrics or an event emitter.
	pricingService, err := pricing.NewService(pricing.ServiceParams{
		DB:        dbClient,
		Repo:      pricing.NewRepository(dbClient.DB()),
		Catalog:   catalogService.Reader(),
		Audit:     auditService,
		Quotation: cfg.Quotation,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	sender, err := mailer.NewSMTPSender(cfg.SMTP)
	if err != nil {
		logg.Error(context.Background(), "failed to create smtp sender", err)
		os.Exit(1)
	}

	processor, err := delivery.NewProcessor(delivery.ProcessorParams{
		Store:   outbox.NewRepository(dbClient.DB()),
		Quotes:  pricingService,
		Sender:  sender,
		Logger:  logg,
		Metrics: metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Outbox:  cfg.Outbox,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox processor", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "worker",
	})
	logg.Info(ctx, "starting delivery worker")

	if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "delivery worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "delivery worker shutting down gracefully")
}
