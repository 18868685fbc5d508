// Package models defines the document shapes persisted to MongoDB.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// DefaultProfileImage is assigned at signup until the user uploads their own.
const DefaultProfileImage = "/static/defaults/profile.gif"

// User represents both customers and admin users.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // bcrypt hash, never serialized

	ProfileImage    string `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	ProfileImageKey string `bson:"profileImageKey,omitempty" json:"-"`

	Role       string `bson:"role" json:"role"`
	IsVerified bool   `bson:"isVerified" json:"isVerified"`

	// Single-use tokens, stored as SHA-256 hex digests of the value mailed out.
	VerificationToken       string    `bson:"verificationToken,omitempty" json:"-"`
	VerificationTokenExpire time.Time `bson:"verificationTokenExpire,omitempty" json:"-"`
	ResetPasswordToken      string    `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire     time.Time `bson:"resetPasswordExpire,omitempty" json:"-"`

	Favorites []primitive.ObjectID `bson:"favorites,omitempty" json:"favorites,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
