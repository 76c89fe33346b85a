// Package database connects each service to its MongoDB database and
// creates the indexes the query patterns rely on. Every service owns one
// database with one collection per entity, keyed by the entity's string
// identifier.
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a Mongo client, verifies the connection with a ping and
// returns a handle to the named database. Connection parameters mirror the
// service defaults: short server selection so a missing database surfaces
// at startup, retryable writes on.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetMaxPoolSize(10).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client.Database(dbName), nil
}

// Disconnect closes the underlying client of a connected database.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	return db.Client().Disconnect(ctx)
}

// EnsureOrderIndexes creates the indexes used by the order service.
func EnsureOrderIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "table_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

// EnsureTableBillIndexes creates the indexes used by the table/bill
// service: unique identifiers plus the status and cross-reference fields
// the active-bill count and the periodic sync query on.
func EnsureTableBillIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("tables").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "table_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "table_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return err
	}
	_, err := db.Collection("bills").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bill_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "table_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "payment_status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "table_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// EnsureMenuIndexes creates the indexes used by the menu service.
func EnsureMenuIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("menu_items").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "item_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	return err
}
