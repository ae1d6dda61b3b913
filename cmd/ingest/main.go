package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	eventRepository "staybook/internal/eventlog/repository"
	"staybook/internal/ingest"
	listingRepository "staybook/internal/listings/repository"
	listingService "staybook/internal/listings/service"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
	"staybook/pkg/validation"
)

const ServiceName = "ingest"

func main() {
	cfg := config.Load(ServiceName)
	kafkaCfg := kafka_config.Load(cfg.Log)
	cfg.SetMongo()
	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listingRepo := listingRepository.NewMongoListingRepository(cfg)
	var invalidator listingService.OwnerInvalidator
	if cfg.Client.Redis != nil {
		invalidator = listingRepository.NewCachedDirectory(
			listingRepo,
			listingRepository.NewRedisOwnerCache(cfg.Client.Redis),
			cfg.ListingOwnerCacheTTL,
			cfg.Log,
		)
	}

	validator := validation.New(cfg.Log)
	handler := ingest.NewHandler(
		eventRepository.NewMongoLedgerEventRepository(cfg),
		listingService.NewListingService(listingRepo, invalidator, validator, cfg),
		validator,
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.LedgerTopic, cfg.IngestGroupID, cfg.LedgerDLQTopic, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create ledger consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	cfg.Log.Info("Starting ledger ingestion",
		"topic", cfg.LedgerTopic,
		"group_id", cfg.IngestGroupID,
		"dlq_topic", cfg.LedgerDLQTopic,
	)

	startErr := consumer.Start(ctx)
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close ledger consumer", "error", err)
	}
	cfg.Log.Info("Ledger ingestion stopped", metrics.Snapshot().LogValues()...)

	if startErr != nil && !errors.Is(startErr, context.Canceled) {
		// Exit non-zero so the supervisor restarts from the last committed offset.
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Ledger consumer stopped", "error", startErr)
	}
}
