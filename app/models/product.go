package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxGalleryImages caps the gallery size per product.
const MaxGalleryImages = 5

// TargetShapes enumerates the body-shape categories a product can target.
var TargetShapes = []string{"hourglass", "pear", "apple", "rectangle", "inverted triangle"}

// ProductTypes enumerates the garment categories.
var ProductTypes = []string{"dress", "top", "bottom", "accessory", "outerwear"}

// GalleryImage is one stored product image: the public URL served to clients
// and the object-storage key needed to delete it later.
type GalleryImage struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key" json:"key"`
}

// Product is a catalog entry owned by the admin who listed it.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`

	TargetShapes []string `bson:"targetShapes" json:"targetShapes"`
	Type         string   `bson:"type" json:"type"`

	Stock   int            `bson:"stock" json:"stock"`
	Gallery []GalleryImage `bson:"gallery,omitempty" json:"gallery,omitempty"`

	ListedBy primitive.ObjectID `bson:"listedBy" json:"listedBy"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsTargetShape reports whether s is one of the known shape categories.
func IsTargetShape(s string) bool {
	for _, v := range TargetShapes {
		if v == s {
			return true
		}
	}
	return false
}

// IsProductType reports whether s is one of the known garment categories.
func IsProductType(s string) bool {
	for _, v := range ProductTypes {
		if v == s {
			return true
		}
	}
	return false
}

// Validate checks the category enums and the gallery cap.
func (p *Product) Validate() error {
	if len(p.TargetShapes) == 0 {
		return fmt.Errorf("at least one target shape is required")
	}
	for _, s := range p.TargetShapes {
		if !IsTargetShape(s) {
			return fmt.Errorf("unknown target shape %q", s)
		}
	}
	if !IsProductType(p.Type) {
		return fmt.Errorf("unknown product type %q", p.Type)
	}
	if len(p.Gallery) > MaxGalleryImages {
		return fmt.Errorf("you can upload a maximum of %d images", MaxGalleryImages)
	}
	return nil
}
