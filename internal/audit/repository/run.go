package repository

import (
	"context"
	"errors"
	"fmt"

	auditerrors "staybook/internal/audit/errors"
	"staybook/pkg/config"
	mongotx "staybook/pkg/db/mongo"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "ReconciliationRuns"
)

type RunRepository interface {
	Insert(ctx context.Context, run *model.ReconciliationRun) error
	Latest(ctx context.Context) (*model.ReconciliationRun, error)
}

type mongoRunRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRunRepository(cfg *config.Config) RunRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRunRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRunRepository) Insert(ctx context.Context, run *model.ReconciliationRun) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert reconciliation run: %w", err)
	}
	return nil
}

func (r *mongoRunRepository) Latest(ctx context.Context) (*model.ReconciliationRun, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "started_at", Value: -1}})

	var run model.ReconciliationRun
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&run); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auditerrors.ErrNoRuns
		}
		return nil, fmt.Errorf("failed to read latest reconciliation run: %w", err)
	}
	return &run, nil
}
