//go:build integration

package testutil

import (
	"context"
	"testing"
	"time"

	auditrepo "staybook/internal/audit/repository"
	eventrepo "staybook/internal/eventlog/repository"
	listingrepo "staybook/internal/listings/repository"
	"staybook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "staybook"
	ConnectionTimeout   = 10 * time.Second
)

var managedCollections = []string{
	eventrepo.CollectionName,
	listingrepo.CollectionName,
	auditrepo.CollectionName,
}

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   client,
		Database: client.Database(dbName),
		DBName:   dbName,
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanCollections deletes documents but keeps the collections, so the
// validators and indexes created by the migrate command survive.
func (m *MongoHelper) CleanCollections(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range managedCollections {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) SeedListings(t *testing.T, listings ...model.Listing) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	docs := make([]any, len(listings))
	for i, l := range listings {
		docs[i] = l
	}
	if _, err := m.Database.Collection(listingrepo.CollectionName).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to seed listings: %v", err)
	}
}

func (m *MongoHelper) SeedEvents(t *testing.T, events ...model.LedgerEvent) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	docs := make([]any, len(events))
	for i, e := range events {
		if e.ObservedAt.IsZero() {
			e.ObservedAt = time.Now().UTC()
		}
		docs[i] = e
	}
	if _, err := m.Database.Collection(eventrepo.CollectionName).InsertMany(ctx, docs); err != nil {
		t.Fatalf("failed to seed ledger events: %v", err)
	}
}
