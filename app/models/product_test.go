package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusionfit/storefront/app/models"
)

func validProduct() models.Product {
	return models.Product{
		Name:         "Wrap Dress",
		Description:  "Soft wrap dress",
		Price:        2499,
		TargetShapes: []string{"hourglass", "pear"},
		Type:         "dress",
		Stock:        10,
	}
}

func TestProductValidate(t *testing.T) {
	p := validProduct()
	assert.NoError(t, p.Validate())
}

func TestProductValidateRejectsUnknownShape(t *testing.T) {
	p := validProduct()
	p.TargetShapes = []string{"hourglass", "triangle"}
	assert.Error(t, p.Validate())
}

func TestProductValidateRequiresShapes(t *testing.T) {
	p := validProduct()
	p.TargetShapes = nil
	assert.Error(t, p.Validate())
}

func TestProductValidateRejectsUnknownType(t *testing.T) {
	p := validProduct()
	p.Type = "shoes"
	assert.Error(t, p.Validate())
}

func TestProductValidateGalleryCap(t *testing.T) {
	p := validProduct()
	for i := 0; i < models.MaxGalleryImages; i++ {
		p.Gallery = append(p.Gallery, models.GalleryImage{URL: "u", Key: "k"})
	}
	assert.NoError(t, p.Validate())

	p.Gallery = append(p.Gallery, models.GalleryImage{URL: "u6", Key: "k6"})
	assert.Error(t, p.Validate())
}
