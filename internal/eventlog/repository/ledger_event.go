package repository

import (
	"context"
	"errors"
	"fmt"

	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "LedgerEvents"
)

// LedgerEventRepository stores contract events keyed by (kind, position,
// log_index). Appending an event that is already stored is a no-op, so a
// replayed stream converges to the same log.
type LedgerEventRepository interface {
	Append(ctx context.Context, ev *model.LedgerEvent) (bool, error)
	AppendBatch(ctx context.Context, evs []model.LedgerEvent) (int, error)
	QueryEvents(ctx context.Context, kind model.EventKind, from, to uint64) ([]model.LedgerEvent, error)
	CurrentPosition(ctx context.Context) (uint64, error)
}

type mongoLedgerEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoLedgerEventRepository(cfg *config.Config) LedgerEventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLedgerEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func eventKeyFilter(ev *model.LedgerEvent) bson.M {
	return bson.M{
		"kind":      ev.Kind,
		"position":  ev.Position,
		"log_index": ev.LogIndex,
	}
}

func (r *mongoLedgerEventRepository) Append(ctx context.Context, ev *model.LedgerEvent) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	opts := options.Update().SetUpsert(true)
	result, err := r.collection.UpdateOne(ctx, eventKeyFilter(ev), bson.M{"$setOnInsert": ev}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to append %s event at %d/%d: %w", ev.Kind, ev.Position, ev.LogIndex, err)
	}
	return result.UpsertedCount > 0, nil
}

// AppendBatch appends all events in one transaction and returns how many were
// new.
func (r *mongoLedgerEventRepository) AppendBatch(ctx context.Context, evs []model.LedgerEvent) (int, error) {
	inserted := 0
	err := r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		inserted = 0
		for i := range evs {
			ok, err := r.Append(sessCtx, &evs[i])
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *mongoLedgerEventRepository) QueryEvents(ctx context.Context, kind model.EventKind, from, to uint64) ([]model.LedgerEvent, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"kind":     kind,
		"position": bson.M{"$gte": from, "$lte": to},
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "position", Value: 1},
		{Key: "log_index", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s events: %w", kind, err)
	}
	defer cursor.Close(ctx)

	events := make([]model.LedgerEvent, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode %s events: %w", kind, err)
	}
	return events, nil
}

// CurrentPosition is the highest stored position, or 0 for an empty log.
func (r *mongoLedgerEventRepository) CurrentPosition(ctx context.Context) (uint64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "position", Value: -1}}).
		SetProjection(bson.M{"position": 1})

	var head struct {
		Position uint64 `bson:"position"`
	}
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&head)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read current position: %w", err)
	}
	return head.Position, nil
}
