package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/cache"
)

const (
	cartKeyPrefix = "fusionfit:cart:"
	cartTTL       = 30 * 24 * time.Hour
)

// CartItem is one line of a server-side cart.
type CartItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// CartService keeps per-user carts in redis so they follow the customer
// across devices. Whole-cart replacement, last write wins.
type CartService struct {
	rdb *redis.Client
}

func NewCartService(rdb *redis.Client) *CartService {
	return &CartService{rdb: rdb}
}

func cartKey(userID primitive.ObjectID) string {
	return cartKeyPrefix + userID.Hex()
}

func (s *CartService) client() (*redis.Client, error) {
	if s.rdb == nil {
		return nil, apperr.New(503, "Cart is unavailable")
	}
	return s.rdb, nil
}

// Get returns the user's cart; a missing key is an empty cart.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) ([]CartItem, error) {
	rdb, err := s.client()
	if err != nil {
		return nil, err
	}

	raw, err := rdb.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return []CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	items := []CartItem{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Replace overwrites the cart with the given items and refreshes the TTL.
func (s *CartService) Replace(ctx context.Context, userID primitive.ObjectID, items []CartItem) error {
	for _, item := range items {
		if item.Quantity < 1 {
			return apperr.BadRequest("Item quantity must be at least 1")
		}
		if _, err := primitive.ObjectIDFromHex(item.ProductID); err != nil {
			return apperr.BadRequest("Invalid product id")
		}
	}

	rdb, err := s.client()
	if err != nil {
		return err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, cartKey(userID), data, cartTTL).Err()
}

// Clear removes the user's cart.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) error {
	rdb, err := s.client()
	if err != nil {
		return err
	}
	return rdb.Del(ctx, cartKey(userID)).Err()
}

// DefaultCartService builds a cart service on the shared cache client.
func DefaultCartService() *CartService {
	return NewCartService(cache.RDB)
}
