package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/bind"
	"github.com/fusionfit/storefront/pkg/cache"
	"github.com/fusionfit/storefront/pkg/logger"
	"github.com/fusionfit/storefront/pkg/storage"
	"github.com/fusionfit/storefront/pkg/workerpool"
)

const (
	catalogCachePrefix = "fusionfit:catalog:"
	catalogCacheTTL    = 2 * time.Minute
)

// CatalogService implements product listing, search, and admin CRUD.
type CatalogService struct {
	products repositories.ProductRepository
	disk     storage.Disk
	uploads  *workerpool.Pool
}

func NewCatalogService(products repositories.ProductRepository, disk storage.Disk) *CatalogService {
	return &CatalogService{
		products: products,
		disk:     disk,
		uploads:  workerpool.New(8),
	}
}

// PageResult is one catalog page plus pagination totals.
type PageResult struct {
	Products      []models.Product `json:"products"`
	TotalProducts int64            `json:"totalProducts"`
	TotalPages    int              `json:"totalPages"`
	CurrentPage   int              `json:"currentPage"`
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = repositories.PageSize
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// List returns one page of the catalog, optionally filtered by target shape
// and sorted. Pages are cached briefly in redis.
func (s *CatalogService) List(ctx context.Context, targetShape, sortBy string, page int) (*PageResult, error) {
	if page < 1 {
		page = 1
	}

	cacheKey := fmt.Sprintf("%slist:%s:%s:%d", catalogCachePrefix, targetShape, sortBy, page)
	var cached PageResult
	if cache.Get(cacheKey, &cached) {
		return &cached, nil
	}

	products, total, err := s.products.List(ctx, repositories.ListOptions{
		TargetShape: targetShape,
		SortBy:      sortBy,
		Page:        page,
	})
	if err != nil {
		return nil, err
	}

	result := &PageResult{
		Products:      products,
		TotalProducts: total,
		TotalPages:    totalPages(total, repositories.PageSize),
		CurrentPage:   page,
	}
	if err := cache.Set(cacheKey, result, catalogCacheTTL); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache set", "error", err)
	}
	return result, nil
}

// Search matches query as a case-insensitive substring of the product name,
// with an optional type filter.
func (s *CatalogService) Search(ctx context.Context, query, category, sortBy string, page, limit int) (*PageResult, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = repositories.PageSize
	}

	products, total, err := s.products.List(ctx, repositories.ListOptions{
		NameQuery: query,
		Type:      category,
		SortBy:    sortBy,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	return &PageResult{
		Products:      products,
		TotalProducts: total,
		TotalPages:    totalPages(total, limit),
		CurrentPage:   page,
	}, nil
}

// Suggestions returns up to 5 products matching name or description.
func (s *CatalogService) Suggestions(ctx context.Context, query string) ([]models.Product, error) {
	return s.products.Suggestions(ctx, query)
}

// Get returns a single product by its hex ID.
func (s *CatalogService) Get(ctx context.Context, idHex string) (*models.Product, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.BadRequest("Invalid product id")
	}
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	return product, err
}

// ListedBy returns the products the given admin created.
func (s *CatalogService) ListedBy(ctx context.Context, adminID primitive.ObjectID) ([]models.Product, error) {
	return s.products.FindByListedBy(ctx, adminID)
}

// ─── Admin CRUD ──────────────────────────────────────────────────────────────

// CreateProductInput is the validated listing payload (multipart fields).
type CreateProductInput struct {
	Name         string
	Description  string
	Price        float64
	TargetShapes []string
	Type         string
	Stock        int
}

// CreateListing uploads the gallery and persists the product.
func (s *CatalogService) CreateListing(ctx context.Context, adminID primitive.ObjectID, in CreateProductInput, images []bind.File) (*models.Product, error) {
	if len(images) == 0 {
		return nil, apperr.BadRequest("Please upload at least one image.")
	}
	if len(images) > models.MaxGalleryImages {
		return nil, apperr.Newf(400, "You can upload a maximum of %d images", models.MaxGalleryImages)
	}

	product := &models.Product{
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		TargetShapes: in.TargetShapes,
		Type:         in.Type,
		Stock:        in.Stock,
		ListedBy:     adminID,
	}
	if err := product.Validate(); err != nil {
		return nil, apperr.BadRequest(err.Error())
	}

	gallery, err := s.uploadGallery(ctx, "products/"+in.Type, images)
	if err != nil {
		return nil, err
	}
	product.Gallery = gallery

	if err := s.products.Create(ctx, product); err != nil {
		s.deleteGallery(ctx, gallery)
		return nil, err
	}

	s.invalidateCache(ctx)
	return product, nil
}

// UpdateProductInput carries optional field updates plus gallery changes.
// Nil pointers leave the field untouched.
type UpdateProductInput struct {
	Name        string
	Description string
	Price       *float64
	Stock       *int
	DeletedKeys []string // storage keys of gallery images to remove
}

// UpdateListing applies field updates, removes the named gallery images, and
// uploads any new ones, holding the ≤5 gallery invariant.
func (s *CatalogService) UpdateListing(ctx context.Context, idHex string, in UpdateProductInput, newImages []bind.File) (*models.Product, error) {
	product, err := s.Get(ctx, idHex)
	if err != nil {
		return nil, err
	}

	if len(in.DeletedKeys) > 0 {
		deleted := make(map[string]bool, len(in.DeletedKeys))
		for _, key := range in.DeletedKeys {
			deleted[key] = true
		}

		kept := product.Gallery[:0]
		for _, img := range product.Gallery {
			if deleted[img.Key] {
				if err := s.disk.Delete(ctx, img.Key); err != nil {
					logger.WithCtx(ctx).Warn("catalog: delete gallery image",
						"key", img.Key, "error", err)
				}
				continue
			}
			kept = append(kept, img)
		}
		product.Gallery = kept
	}

	if len(newImages) > 0 {
		if len(product.Gallery)+len(newImages) > models.MaxGalleryImages {
			return nil, apperr.Newf(400, "Maximum %d images allowed", models.MaxGalleryImages)
		}
		uploaded, err := s.uploadGallery(ctx, "products/"+product.Type, newImages)
		if err != nil {
			return nil, err
		}
		product.Gallery = append(product.Gallery, uploaded...)
	}

	if in.Name != "" {
		product.Name = in.Name
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	return product, nil
}

// DeleteListing removes the product and its gallery objects.
func (s *CatalogService) DeleteListing(ctx context.Context, idHex string) error {
	product, err := s.Get(ctx, idHex)
	if err != nil {
		return err
	}

	s.deleteGallery(ctx, product.Gallery)

	if err := s.products.Delete(ctx, product.ID); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// ─── Gallery helpers ─────────────────────────────────────────────────────────

// uploadGallery stores each image under prefix through the worker pool and
// returns the (URL, key) pairs. On any failure the already-stored objects
// are removed.
func (s *CatalogService) uploadGallery(ctx context.Context, prefix string, images []bind.File) ([]models.GalleryImage, error) {
	gallery := make([]models.GalleryImage, len(images))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, img := range images {
		i, img := i, img

		key, err := galleryKey(prefix, img.Name)
		if err != nil {
			firstErr = err
			break
		}

		wg.Add(1)
		if err := s.uploads.SubmitWait(func() {
			defer wg.Done()
			if err := s.disk.Put(ctx, key, img.Content); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			gallery[i] = models.GalleryImage{URL: s.disk.URL(key), Key: key}
		}); err != nil {
			wg.Done()
			firstErr = err
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		s.deleteGallery(ctx, gallery)
		return nil, fmt.Errorf("catalog: gallery upload: %w", firstErr)
	}
	return gallery, nil
}

func (s *CatalogService) deleteGallery(ctx context.Context, gallery []models.GalleryImage) {
	for _, img := range gallery {
		if img.Key == "" {
			continue
		}
		if err := s.disk.Delete(ctx, img.Key); err != nil {
			logger.WithCtx(ctx).Warn("catalog: delete gallery image",
				"key", img.Key, "error", err)
		}
	}
}

func galleryKey(prefix, filename string) (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + "/" + hex.EncodeToString(b) + path.Ext(filename), nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if err := cache.DelPattern(catalogCachePrefix + "*"); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidate", "error", err)
	}
}
