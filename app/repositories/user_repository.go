// Package repositories wraps the MongoDB collections behind small interfaces
// so the services can be tested against fakes.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/database"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("repositories: not found")

// UserRepository is the persistence surface for user documents.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Token lookups match the hashed token AND a still-valid expiry.
	FindByVerificationToken(ctx context.Context, hashed string) (*models.User, error)
	FindByResetToken(ctx context.Context, hashed string) (*models.User, error)

	SetVerificationToken(ctx context.Context, id primitive.ObjectID, hashed string, expire time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, hashed string, expire time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error

	AddFavorite(ctx context.Context, id, productID primitive.ObjectID) error
	RemoveFavorite(ctx context.Context, id, productID primitive.ObjectID) error

	// PurgeExpiredTokens clears token fields whose expiry has passed.
	// Run periodically by the scheduler.
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

type mongoUserRepository struct {
	col *mongo.Collection
}

// NewUserRepository returns the MongoDB-backed user repository.
func NewUserRepository() UserRepository {
	return &mongoUserRepository{col: database.Collection(database.ColUsers)}
}

func (r *mongoUserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByVerificationToken(ctx context.Context, hashed string) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"verificationToken":       hashed,
		"verificationTokenExpire": bson.M{"$gt": time.Now()},
	})
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, hashed string) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"resetPasswordToken":  hashed,
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	})
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	set, ok := update["$set"].(bson.M)
	if !ok {
		set = bson.M{}
		update["$set"] = set
	}
	set["updatedAt"] = time.Now()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetVerificationToken(ctx context.Context, id primitive.ObjectID, hashed string, expire time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"verificationToken":       hashed,
		"verificationTokenExpire": expire,
	}})
}

func (r *mongoUserRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true},
		"$unset": bson.M{"verificationToken": "", "verificationTokenExpire": ""},
	})
}

func (r *mongoUserRepository) SetResetToken(ctx context.Context, id primitive.ObjectID, hashed string, expire time.Time) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{
		"resetPasswordToken":  hashed,
		"resetPasswordExpire": expire,
	}})
}

func (r *mongoUserRepository) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password": hashedPassword},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
}

func (r *mongoUserRepository) AddFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$addToSet": bson.M{"favorites": productID}})
}

func (r *mongoUserRepository) RemoveFavorite(ctx context.Context, id, productID primitive.ObjectID) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"favorites": productID}})
}

func (r *mongoUserRepository) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	now := time.Now()
	total := int64(0)

	res, err := r.col.UpdateMany(ctx,
		bson.M{"verificationTokenExpire": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"verificationToken": "", "verificationTokenExpire": ""}},
	)
	if err != nil {
		return total, err
	}
	total += res.ModifiedCount

	res, err = r.col.UpdateMany(ctx,
		bson.M{"resetPasswordExpire": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""}},
	)
	if err != nil {
		return total, err
	}
	total += res.ModifiedCount

	return total, nil
}
