// Package resources shapes model documents into API payloads, stripping
// anything the client must never see.
package resources

import (
	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/response"
)

// User strips credentials and token fields from a user document.
func User(u *models.User) response.M {
	return response.M{
		"_id":          u.ID.Hex(),
		"name":         u.Name,
		"email":        u.Email,
		"profileImage": u.ProfileImage,
		"role":         u.Role,
		"isVerified":   u.IsVerified,
		"favorites":    u.Favorites,
		"createdAt":    u.CreatedAt,
	}
}
