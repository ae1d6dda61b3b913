package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	auditrepo "staybook/internal/audit/repository"
	eventrepo "staybook/internal/eventlog/repository"
	listingrepo "staybook/internal/listings/repository"
	"staybook/internal/migrations/mongo/validators"
	"staybook/pkg/logger"
)

var (
	// The unique key makes a replayed event an upsert no-op.
	LedgerEventsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "kind", Value: 1},
				{Key: "position", Value: 1},
				{Key: "log_index", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("event_key"),
		},
		{Keys: bson.D{{Key: "position", Value: -1}}, Options: options.Index().SetName("position_desc")},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetName("booking_id")},
	}

	ListingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "host", Value: 1}}, Options: options.Index().SetName("host")},
	}

	ReconciliationRunsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "started_at", Value: -1}}, Options: options.Index().SetName("started_at_desc")},
	}
)

type CollectionSpec struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the services read or write, in the
// order they are migrated.
func Collections() []CollectionSpec {
	return []CollectionSpec{
		{Name: eventrepo.CollectionName, Indexes: LedgerEventsIndexes, Validator: validators.LedgerEventValidator},
		{Name: listingrepo.CollectionName, Indexes: ListingsIndexes, Validator: validators.ListingValidator},
		{Name: auditrepo.CollectionName, Indexes: ReconciliationRunsIndexes, Validator: validators.ReconciliationRunValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
