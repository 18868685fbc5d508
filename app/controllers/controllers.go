// Package controllers translates HTTP requests into service calls and
// service results into JSON envelopes.
package controllers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/pkg/middleware"
)

// currentUserID reads the authenticated user's ObjectID from the request
// context. The auth middleware guarantees it is present on guarded routes.
func currentUserID(r *http.Request) (primitive.ObjectID, bool) {
	hexID, ok := middleware.UserIDFromCtx(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
