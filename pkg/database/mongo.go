// Package database owns the MongoDB client for the storefront.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fusionfit/storefront/config"
)

// Collection names.
const (
	ColUsers    = "users"
	ColProducts = "products"
	ColOrders   = "orders"
	ColLogs     = "logs"
)

var client *mongo.Client

// Connect dials MongoDB and verifies the connection with a ping.
// Returns an error instead of exiting so the caller can shut down gracefully.
func Connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(config.MongoURI()).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(25)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(dialCtx, opts)
	if err != nil {
		return fmt.Errorf("database: connect: %w", err)
	}

	if err := c.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = c.Disconnect(context.Background())
		return fmt.Errorf("database: ping: %w", err)
	}

	client = c
	return nil
}

// Disconnect closes the client. Safe to call when Connect never succeeded.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// DB returns the storefront database handle.
func DB() *mongo.Database {
	return client.Database(config.MongoDB())
}

// Collection returns a collection handle by name.
func Collection(name string) *mongo.Collection {
	return DB().Collection(name)
}

// WithTransaction runs fn inside a session transaction. The callback's writes
// commit together or not at all; any error aborts the transaction and is
// returned to the caller.
func WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("database: start session: %w", err)
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}
