package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/database"
)

// OrderRepository is the persistence surface for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)

	// FindByUser returns the user's orders, newest first.
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)

	// FindByProducts returns orders containing any of the given products,
	// newest first. Used for the admin's order view.
	FindByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error)

	// UpdateStatus writes the new status; when completePayment is set the
	// payment status flips to completed in the same $set.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, completePayment bool) (*models.Order, error)

	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)

	// RevenueBetween sums totalAmount over completed-payment orders in the window.
	RevenueBetween(ctx context.Context, from, to time.Time) (float64, error)
}

type mongoOrderRepository struct {
	col *mongo.Collection
}

// NewOrderRepository returns the MongoDB-backed order repository.
func NewOrderRepository() OrderRepository {
	return &mongoOrderRepository{col: database.Collection(database.ColOrders)}
}

func (r *mongoOrderRepository) Create(ctx context.Context, o *models.Order) error {
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid
	}
	return nil
}

func (r *mongoOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *mongoOrderRepository) findAll(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *mongoOrderRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.findAll(ctx, bson.M{"user": userID})
}

func (r *mongoOrderRepository) FindByProducts(ctx context.Context, productIDs []primitive.ObjectID) ([]models.Order, error) {
	return r.findAll(ctx, bson.M{"items.product": bson.M{"$in": productIDs}})
}

func (r *mongoOrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, completePayment bool) (*models.Order, error) {
	set := bson.M{
		"orderStatus": status,
		"updatedAt":   time.Now(),
	}
	if completePayment {
		set["paymentStatus"] = models.PaymentCompleted
	}

	var updated models.Order
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoOrderRepository) CountAll(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *mongoOrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"orderStatus": status})
}

func (r *mongoOrderRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": from, "$lt": to},
	})
}

func (r *mongoOrderRepository) RevenueBetween(ctx context.Context, from, to time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"createdAt":     bson.M{"$gte": from, "$lt": to},
			"paymentStatus": models.PaymentCompleted,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalRevenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var results []struct {
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].TotalRevenue, nil
}
