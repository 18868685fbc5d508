package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/pkg/apperr"
)

func TestCartReplaceValidation(t *testing.T) {
	svc := NewCartService(nil)
	userID := primitive.NewObjectID()

	// items are validated before redis is touched
	err := svc.Replace(context.Background(), userID, []CartItem{
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 0},
	})
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Item quantity must be at least 1", apperr.Message(err))

	err = svc.Replace(context.Background(), userID, []CartItem{
		{ProductID: "not-an-id", Quantity: 1},
	})
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Invalid product id", apperr.Message(err))
}

func TestCartUnavailableWithoutRedis(t *testing.T) {
	svc := NewCartService(nil)
	userID := primitive.NewObjectID()

	_, err := svc.Get(context.Background(), userID)
	assert.Equal(t, 503, apperr.Status(err))
	assert.Equal(t, "Cart is unavailable", apperr.Message(err))

	err = svc.Replace(context.Background(), userID, []CartItem{
		{ProductID: primitive.NewObjectID().Hex(), Quantity: 2},
	})
	assert.Equal(t, 503, apperr.Status(err))

	err = svc.Clear(context.Background(), userID)
	assert.Equal(t, 503, apperr.Status(err))
}
