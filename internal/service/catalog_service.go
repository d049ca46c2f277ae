package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/storage/s3"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const (
	productImageFolder = "products"
	reviewImageFolder  = "reviews"
	defaultFeatured    = 8
	defaultRelated     = 4
	cleanupTimeout     = 10 * time.Second
)

// ImageFile is an uploaded file as received from a multipart form.
type ImageFile struct {
	Name string
	Data []byte
}

type CreateProductInput struct {
	Name           string
	Description    string
	Price          float64
	MRP            float64
	Discount       float64
	CategoryID     string
	Stock          int
	Unit           string
	Specifications map[string]string
	Features       []string
	IsFeatured     bool
	SKU            string
	Tags           []string
}

// UpdateProductInput uses pointers so absent fields are left untouched.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Price          *float64
	MRP            *float64
	Discount       *float64
	CategoryID     *string
	Stock          *int
	Unit           *string
	Specifications map[string]string
	Features       []string
	IsFeatured     *bool
	IsActive       *bool
	SKU            *string
	Tags           []string
}

type CatalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	cache      repository.ProductDetailCache
	images     s3.ImageStorage
	log        logger.Logger
}

func NewCatalogService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	users repository.UserRepository,
	cache repository.ProductDetailCache,
	images s3.ImageStorage,
	log logger.Logger,
) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
		users:      users,
		cache:      cache,
		images:     images,
		log:        log,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	return s.products.List(ctx, params)
}

// GetProduct serves the public detail view: inactive products are treated as
// missing and a successful read bumps the view counter best-effort.
func (s *CatalogService) GetProduct(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, repository.ErrNotFound
	}
	if err := s.products.IncrementViews(ctx, productID); err != nil {
		s.log.Warnf("Failed to increment views for product %s: %v", productID, err)
	}
	return product, nil
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, repository.ErrNotFound
	}
	if err := s.products.IncrementViews(ctx, product.ID); err != nil {
		s.log.Warnf("Failed to increment views for product %s: %v", product.ID, err)
	}
	return product, nil
}

func (s *CatalogService) FeaturedProducts(ctx context.Context, limit int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = defaultFeatured
	}
	return s.products.Featured(ctx, limit)
}

func (s *CatalogService) RelatedProducts(ctx context.Context, productID string, limit int) ([]entity.Product, error) {
	if limit <= 0 {
		limit = defaultRelated
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.products.Related(ctx, product.CategoryID, product.ID, limit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput, files []ImageFile) (*entity.Product, error) {
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("category lookup failed: %w", err)
	}

	uploaded, err := s.uploadImages(ctx, files, productImageFolder)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &entity.Product{
		Name:           input.Name,
		Slug:           entity.Slugify(input.Name),
		Description:    input.Description,
		Price:          input.Price,
		MRP:            input.MRP,
		Discount:       input.Discount,
		CategoryID:     input.CategoryID,
		Images:         uploaded,
		Stock:          input.Stock,
		Unit:           input.Unit,
		Specifications: input.Specifications,
		Features:       input.Features,
		IsFeatured:     input.IsFeatured,
		IsActive:       true,
		SKU:            input.SKU,
		Tags:           input.Tags,
		Reviews:        []entity.Review{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := s.products.Create(ctx, product); err != nil {
		s.cleanupImages(uploaded)
		return nil, err
	}
	s.log.Infof("Created product %s (%s)", product.ID, product.Slug)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, productID string, input UpdateProductInput, files []ImageFile) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != product.Name {
		product.Name = *input.Name
		product.Slug = entity.Slugify(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.MRP != nil {
		product.MRP = *input.MRP
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("category lookup failed: %w", err)
		}
		product.CategoryID = *input.CategoryID
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Specifications != nil {
		product.Specifications = input.Specifications
	}
	if input.Features != nil {
		product.Features = input.Features
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}

	if len(files) > 0 {
		uploaded, err := s.uploadImages(ctx, files, productImageFolder)
		if err != nil {
			return nil, err
		}
		product.Images = append(product.Images, uploaded...)
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(product.ID)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, productID string) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		return err
	}
	s.invalidateCache(productID)

	keys := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		keys = append(keys, img.PublicID)
	}
	for _, review := range product.Reviews {
		for _, img := range review.Images {
			keys = append(keys, img.PublicID)
		}
	}
	if len(keys) > 0 {
		if err := s.images.DeleteMany(ctx, keys); err != nil {
			s.log.Warnf("Failed to delete images for product %s: %v", productID, err)
		}
	}
	return nil
}

func (s *CatalogService) DeleteProductImage(ctx context.Context, productID, publicID string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.RemoveImage(publicID) {
		return nil, repository.ErrNotFound
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidateCache(productID)
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.log.Warnf("Failed to delete image %s: %v", publicID, err)
	}
	return product, nil
}

// SetStock is the admin absolute correction, distinct from the relative
// increments used by the order flow.
func (s *CatalogService) SetStock(ctx context.Context, productID string, stock int) (*entity.Product, error) {
	if err := s.products.SetStock(ctx, productID, stock); err != nil {
		return nil, err
	}
	s.invalidateCache(productID)
	return s.products.GetByID(ctx, productID)
}

func (s *CatalogService) AddReview(ctx context.Context, productID, userID string, rating int, comment string, files []ImageFile) (*entity.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, repository.ErrNotFound
	}
	if product.ReviewByUser(userID) != nil {
		return nil, ErrAlreadyReviewed
	}

	uploaded, err := s.uploadImages(ctx, files, reviewImageFolder)
	if err != nil {
		return nil, err
	}

	product.AddReview(userID, user.Name, rating, comment, uploaded)
	if err := s.products.Update(ctx, product); err != nil {
		s.cleanupImages(uploaded)
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) UpdateReview(ctx context.Context, productID, reviewID, userID string, rating int, comment string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	review := product.FindReview(reviewID)
	if review == nil {
		return nil, repository.ErrNotFound
	}
	if review.UserID != userID {
		return nil, ErrForbidden
	}

	review.Rating = rating
	review.Comment = comment
	product.RecalculateRating()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteReview allows the author or an admin to remove a review. Any images
// attached to the review are deleted from storage afterwards.
func (s *CatalogService) DeleteReview(ctx context.Context, productID, reviewID, userID string, isAdmin bool) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	review := product.FindReview(reviewID)
	if review == nil {
		return nil, repository.ErrNotFound
	}
	if review.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}

	images := review.Images
	product.RemoveReview(reviewID)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.cleanupImages(images)
	return product, nil
}

func (s *CatalogService) uploadImages(ctx context.Context, files []ImageFile, folder string) ([]entity.Image, error) {
	uploaded := make([]entity.Image, 0, len(files))
	for _, f := range files {
		stored, err := s.images.Upload(ctx, f.Name, f.Data, folder)
		if err != nil {
			s.cleanupImages(uploaded)
			return nil, fmt.Errorf("failed to upload image %s: %w", f.Name, err)
		}
		uploaded = append(uploaded, entity.Image{PublicID: stored.Key, URL: stored.URL})
	}
	return uploaded, nil
}

func (s *CatalogService) cleanupImages(uploaded []entity.Image) {
	if len(uploaded) == 0 {
		return
	}
	keys := make([]string, 0, len(uploaded))
	for _, img := range uploaded {
		keys = append(keys, img.PublicID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.images.DeleteMany(ctx, keys); err != nil {
		s.log.Warnf("Failed to clean up uploaded images: %v", err)
	}
}

func (s *CatalogService) invalidateCache(productID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, productID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Failed to evict product %s from cache: %v", productID, err)
	}
}
