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

// PageSize is the fixed catalog page size.
const PageSize = 20

// SuggestionLimit caps search-suggestion results.
const SuggestionLimit = 5

// Sort keys accepted by catalog listing and search.
const (
	SortRelevant       = "relevant"
	SortPriceLowToHigh = "priceLowToHigh"
	SortPriceHighToLow  = "priceHighToLow"
	SortNewest          = "newest"
)

// ListOptions describe a catalog page request.
type ListOptions struct {
	TargetShape string // filter: products targeting this body shape
	Type        string // filter: garment category
	NameQuery   string // case-insensitive substring match on name
	SortBy      string // one of the Sort* keys; anything else is natural order
	Page        int    // 1-based
	Limit       int    // defaults to PageSize
}

// ProductRepository is the persistence surface for catalog entries.
type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	FindByListedBy(ctx context.Context, adminID primitive.ObjectID) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// List returns one page of products plus the total match count.
	List(ctx context.Context, opts ListOptions) ([]models.Product, int64, error)

	// Suggestions matches query against name and description, capped at
	// SuggestionLimit results.
	Suggestions(ctx context.Context, query string) ([]models.Product, error)

	// DecrementStock conditionally decrements stock by qty. It fails with
	// ErrInsufficientStock when the product is missing or stock < qty, so
	// a surrounding transaction can abort.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error

	CountAll(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}

// ErrInsufficientStock is returned by DecrementStock when the conditional
// update matches nothing.
var ErrInsufficientStock = errors.New("repositories: insufficient stock")

type mongoProductRepository struct {
	col *mongo.Collection
}

// NewProductRepository returns the MongoDB-backed product repository.
func NewProductRepository() ProductRepository {
	return &mongoProductRepository{col: database.Collection(database.ColProducts)}
}

// buildFilter translates ListOptions into a Mongo filter document.
func buildFilter(opts ListOptions) bson.M {
	filter := bson.M{}
	if opts.TargetShape != "" {
		filter["targetShapes"] = bson.M{"$in": []string{opts.TargetShape}}
	}
	if opts.Type != "" {
		filter["type"] = opts.Type
	}
	if opts.NameQuery != "" {
		filter["name"] = bson.M{"$regex": opts.NameQuery, "$options": "i"}
	}
	return filter
}

// buildSort translates a sort key into a Mongo sort document. Unknown keys
// (including "relevant") leave the natural order untouched.
func buildSort(sortBy string) bson.D {
	switch sortBy {
	case SortPriceLowToHigh:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceHighToLow:
		return bson.D{{Key: "price", Value: -1}}
	case SortNewest:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return nil
}

func (r *mongoProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return r.findAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (r *mongoProductRepository) FindByListedBy(ctx context.Context, adminID primitive.ObjectID) ([]models.Product, error) {
	return r.findAll(ctx, bson.M{"listedBy": adminID}, nil)
}

func (r *mongoProductRepository) findAll(ctx context.Context, filter bson.M, findOpts *options.FindOptions) ([]models.Product, error) {
	if findOpts == nil {
		findOpts = options.Find()
	}
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context, opts ListOptions) ([]models.Product, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = PageSize
	}

	filter := buildFilter(opts)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSkip(int64(opts.Page-1) * int64(opts.Limit)).
		SetLimit(int64(opts.Limit))
	if sort := buildSort(opts.SortBy); sort != nil {
		findOpts.SetSort(sort)
	}

	products, err := r.findAll(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *mongoProductRepository) Suggestions(ctx context.Context, query string) ([]models.Product, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
		bson.M{"description": bson.M{"$regex": query, "$options": "i"}},
	}}
	return r.findAll(ctx, filter, options.Find().SetLimit(SuggestionLimit))
}

func (r *mongoProductRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *mongoProductRepository) CountAll(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *mongoProductRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"stock": 0})
}

func (r *mongoProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": threshold, "$gt": 0}})
}
