package seeders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/database"
)

func init() {
	Register("sample-products", SeedSampleProducts)
}

// SeedSampleProducts lists a handful of catalog entries owned by the seeded
// admin so a fresh install has something to browse.
func SeedSampleProducts(ctx context.Context, db *mongo.Database) error {
	products := db.Collection(database.ColProducts)

	count, err := products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // catalog already populated
	}

	var admin models.User
	err = db.Collection(database.ColUsers).
		FindOne(ctx, bson.M{"role": models.RoleAdmin}).Decode(&admin)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.New("seed the admin user first")
	}
	if err != nil {
		return err
	}

	now := time.Now()
	samples := []interface{}{
		models.Product{
			Name:         "Wrap Midi Dress",
			Description:  "A soft wrap dress that cinches at the waist.",
			Price:        2499,
			TargetShapes: []string{"hourglass", "pear"},
			Type:         "dress",
			Stock:        40,
			ListedBy:     admin.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		models.Product{
			Name:         "Structured Blazer",
			Description:  "Sharp shoulders and a straight cut.",
			Price:        3199,
			TargetShapes: []string{"rectangle", "inverted triangle"},
			Type:         "outerwear",
			Stock:        25,
			ListedBy:     admin.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		models.Product{
			Name:         "High-Waist Wide Leg Trousers",
			Description:  "Flowy trousers that balance the silhouette.",
			Price:        1899,
			TargetShapes: []string{"apple", "pear"},
			Type:         "bottom",
			Stock:        60,
			ListedBy:     admin.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		models.Product{
			Name:         "Statement Belt",
			Description:  "Defines the waist over dresses and coats.",
			Price:        699,
			TargetShapes: []string{"hourglass", "rectangle", "apple"},
			Type:         "accessory",
			Stock:        120,
			ListedBy:     admin.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}

	_, err = products.InsertMany(ctx, samples)
	return err
}
