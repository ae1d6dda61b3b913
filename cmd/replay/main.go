package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/bookings"
	eventrepo "staybook/internal/eventlog/repository"
	"staybook/internal/ledger"
	listingrepo "staybook/internal/listings/repository"
	"staybook/internal/replay"
	"staybook/pkg/config"
	"staybook/pkg/kafka"
	kafka_config "staybook/pkg/kafka/config"
	kafka_middleware "staybook/pkg/kafka/middleware"
	"staybook/pkg/logger"
	"staybook/pkg/model"
)

const ServiceName = "replay"

func main() {
	file := flag.String("file", "fixtures/ledger.yaml", "YAML fixture of listings and ledger events")
	dryRun := flag.Bool("dry-run", false, "reconcile the fixture in memory and print the bookings instead of publishing")
	from := flag.Uint64("from", 0, "dry-run window start position (0 = default)")
	to := flag.Uint64("to", 0, "dry-run window end position (0 = last fixture position)")
	seed := flag.Bool("seed", false, "write the fixture straight into Mongo instead of publishing to Kafka")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		// The dry run needs no Mongo or Kafka settings.
		log := logger.New(logger.Config{Level: os.Getenv(config.EnvLogLevel), Service: ServiceName})
		fixture := load(log, *file)
		runDryRun(ctx, log, fixture, ledger.Window{From: *from, To: *to})
		return
	}

	cfg := config.Load(ServiceName)
	fixture := load(cfg.Log, *file)
	if *seed {
		seedMongo(ctx, cfg, fixture)
		return
	}
	publish(ctx, cfg, fixture)
}

func seedMongo(ctx context.Context, cfg *config.Config, fixture *replay.Fixture) {
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	inserted, err := fixture.Seed(ctx,
		eventrepo.NewMongoLedgerEventRepository(cfg),
		listingrepo.NewMongoListingRepository(cfg),
		time.Now().UTC(),
	)
	if err != nil {
		cfg.Log.Error("Seed failed", "error", err)
		return
	}
	cfg.Log.Info("Fixture seeded", "listings", len(fixture.Listings), "events", len(fixture.Events), "new_events", inserted)
}

func load(log *logger.Logger, path string) *replay.Fixture {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("Failed to open fixture", "file", path, "error", err)
	}
	defer f.Close()

	fixture, err := replay.LoadFixture(f)
	if err != nil {
		log.Fatal("Failed to load fixture", "file", path, "error", err)
	}
	log.Info("Fixture loaded", "file", path, "listings", len(fixture.Listings), "events", len(fixture.Events))
	return fixture
}

func runDryRun(ctx context.Context, log *logger.Logger, fixture *replay.Fixture, w ledger.Window) {
	opts := ledger.Options{
		Lookback:       config.DefaultLedgerLookbackBlocks,
		CheckInHourUTC: config.DefaultCheckInHourUTC,
	}
	result, err := fixture.DryRun(ctx, w, opts, log)
	if err != nil {
		log.Fatal("Dry run failed", "error", err)
	}

	records := bookings.SortByID(result.Records)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Window   ledger.Window          `json:"window"`
		Bookings []*model.BookingRecord `json:"bookings"`
	}{result.Window, records}); err != nil {
		log.Fatal("Failed to write dry run result", "error", err)
	}
}

func publish(ctx context.Context, cfg *config.Config, fixture *replay.Fixture) {
	messages, err := fixture.Messages()
	if err != nil {
		cfg.Log.Fatal("Failed to build messages", "error", err)
	}

	kafkaCfg := kafka_config.Load(cfg.Log)
	producer, err := kafka.NewProducer(kafkaCfg, cfg.LedgerTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create producer", "error", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close producer", "error", err)
		}
	}()

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.ProducerMiddleware())
	}

	// One message at a time keeps listings ahead of the bookings that use them.
	for _, msg := range messages {
		if err := producer.Publish(ctx, msg); err != nil {
			cfg.Log.Error("Replay aborted", "event_type", msg.GetEventType(), "key", msg.Key, "error", err)
			return
		}
	}

	cfg.Log.Info("Fixture published", append([]any{"topic", cfg.LedgerTopic, "messages", len(messages)}, metrics.Snapshot().LogValues()...)...)
}
