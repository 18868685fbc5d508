package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the query paths depend on. Idempotent;
// run via `fusionfit db:indexes` or at server boot.
func EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		ColUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			// Token lookups during verify/reset flows.
			{Keys: bson.D{{Key: "verificationToken", Value: 1}}},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}},
		},
		ColProducts: {
			{Keys: bson.D{{Key: "targetShapes", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "listedBy", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		ColOrders: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "items.product", Value: 1}}},
			{Keys: bson.D{{Key: "orderStatus", Value: 1}}},
		},
		ColLogs: {
			{Keys: bson.D{{Key: "time", Value: -1}}},
		},
	}

	for col, models := range specs {
		if _, err := Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("database: indexes for %s: %w", col, err)
		}
	}
	return nil
}
