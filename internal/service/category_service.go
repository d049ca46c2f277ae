package service

import (
	"context"
	"fmt"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/storage/s3"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const categoryImageFolder = "categories"

type CreateCategoryInput struct {
	Name         string
	Description  string
	ParentID     string
	DisplayOrder int
}

type UpdateCategoryInput struct {
	Name         *string
	Description  *string
	ParentID     *string
	IsActive     *bool
	DisplayOrder *int
}

type CategoryService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	images     s3.ImageStorage
	log        logger.Logger
}

func NewCategoryService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	images s3.ImageStorage,
	log logger.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		products:   products,
		images:     images,
		log:        log,
	}
}

func (s *CategoryService) List(ctx context.Context, activeOnly bool) ([]entity.Category, error) {
	return s.categories.List(ctx, repository.ListCategoriesParams{ActiveOnly: activeOnly})
}

func (s *CategoryService) Parents(ctx context.Context) ([]entity.Category, error) {
	return s.categories.List(ctx, repository.ListCategoriesParams{ActiveOnly: true, RootsOnly: true})
}

// Tree assembles the full category hierarchy in memory from a single listing
// pass rather than issuing one query per node.
func (s *CategoryService) Tree(ctx context.Context) ([]entity.CategoryNode, error) {
	all, err := s.categories.List(ctx, repository.ListCategoriesParams{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	children := make(map[string][]entity.Category)
	for _, c := range all {
		children[c.ParentID] = append(children[c.ParentID], c)
	}

	var build func(parentID string) []entity.CategoryNode
	build = func(parentID string) []entity.CategoryNode {
		nodes := make([]entity.CategoryNode, 0, len(children[parentID]))
		for _, c := range children[parentID] {
			nodes = append(nodes, entity.CategoryNode{
				Category:      c,
				Subcategories: build(c.ID),
			})
		}
		return nodes
	}
	return build(""), nil
}

func (s *CategoryService) Get(ctx context.Context, categoryID string) (*entity.Category, error) {
	return s.categories.GetByID(ctx, categoryID)
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return s.categories.GetBySlug(ctx, slug)
}

// Products lists active products in the category and its direct
// subcategories.
func (s *CategoryService) Products(ctx context.Context, categoryID string, page, limit int) (*repository.ListProductsResult, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	ids := []string{category.ID}
	subcategories, err := s.categories.List(ctx, repository.ListCategoriesParams{ActiveOnly: true, ParentID: category.ID})
	if err != nil {
		return nil, err
	}
	for _, sub := range subcategories {
		ids = append(ids, sub.ID)
	}

	return s.products.List(ctx, repository.ListProductsParams{
		CategoryIDs: ids,
		ActiveOnly:  true,
		Page:        page,
		PageSize:    limit,
	})
}

func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput, image *ImageFile) (*entity.Category, error) {
	if input.ParentID != "" {
		if _, err := s.categories.GetByID(ctx, input.ParentID); err != nil {
			return nil, fmt.Errorf("parent category lookup failed: %w", err)
		}
	}

	now := time.Now().UTC()
	category := &entity.Category{
		Name:         input.Name,
		Slug:         entity.Slugify(input.Name),
		Description:  input.Description,
		ParentID:     input.ParentID,
		IsActive:     true,
		DisplayOrder: input.DisplayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if image != nil {
		stored, err := s.images.Upload(ctx, image.Name, image.Data, categoryImageFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload category image: %w", err)
		}
		category.Image = &entity.Image{PublicID: stored.Key, URL: stored.URL}
	}

	if _, err := s.categories.Create(ctx, category); err != nil {
		if category.Image != nil {
			if delErr := s.images.Delete(ctx, category.Image.PublicID); delErr != nil {
				s.log.Warnf("Failed to clean up category image: %v", delErr)
			}
		}
		return nil, err
	}
	s.log.Infof("Created category %s (%s)", category.ID, category.Slug)
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, categoryID string, input UpdateCategoryInput, image *ImageFile) (*entity.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != category.Name {
		category.Name = *input.Name
		category.Slug = entity.Slugify(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.ParentID != nil {
		if *input.ParentID != "" {
			if *input.ParentID == category.ID {
				return nil, fmt.Errorf("category cannot be its own parent")
			}
			if _, err := s.categories.GetByID(ctx, *input.ParentID); err != nil {
				return nil, fmt.Errorf("parent category lookup failed: %w", err)
			}
		}
		category.ParentID = *input.ParentID
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.DisplayOrder != nil {
		category.DisplayOrder = *input.DisplayOrder
	}

	if image != nil {
		stored, err := s.images.Upload(ctx, image.Name, image.Data, categoryImageFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to upload category image: %w", err)
		}
		if category.Image != nil {
			if delErr := s.images.Delete(ctx, category.Image.PublicID); delErr != nil {
				s.log.Warnf("Failed to delete old category image: %v", delErr)
			}
		}
		category.Image = &entity.Image{PublicID: stored.Key, URL: stored.URL}
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete refuses while products or subcategories still reference the
// category.
func (s *CategoryService) Delete(ctx context.Context, categoryID string) error {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}

	productCount, err := s.products.CountInCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if productCount > 0 {
		return ErrCategoryInUse
	}

	childCount, err := s.categories.CountChildren(ctx, categoryID)
	if err != nil {
		return err
	}
	if childCount > 0 {
		return ErrCategoryInUse
	}

	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return err
	}
	if category.Image != nil {
		if err := s.images.Delete(ctx, category.Image.PublicID); err != nil {
			s.log.Warnf("Failed to delete category image: %v", err)
		}
	}
	return nil
}
