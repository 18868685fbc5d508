package seeders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/auth"
	"github.com/fusionfit/storefront/pkg/database"
)

func init() {
	Register("admin-user", SeedAdminUser)
}

// SeedAdminUser creates the initial verified admin account if no user with
// that email exists yet.
func SeedAdminUser(ctx context.Context, db *mongo.Database) error {
	col := db.Collection(database.ColUsers)

	err := col.FindOne(ctx, bson.M{"email": "admin@fusionfit.shop"}).Err()
	if err == nil {
		return nil // already seeded
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hashed, err := auth.HashPassword("change-me-please")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = col.InsertOne(ctx, models.User{
		Name:         "Fusion Fit Admin",
		Email:        "admin@fusionfit.shop",
		Password:     hashed,
		ProfileImage: models.DefaultProfileImage,
		Role:         models.RoleAdmin,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err
}
