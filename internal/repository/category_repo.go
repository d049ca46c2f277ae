package repository

import (
	"context"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

type ListCategoriesParams struct {
	ActiveOnly bool
	// RootsOnly restricts the listing to categories without a parent.
	RootsOnly bool
	ParentID  string
}

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) (string, error)
	GetByID(ctx context.Context, categoryID string) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	List(ctx context.Context, params ListCategoriesParams) ([]entity.Category, error)
	CountChildren(ctx context.Context, categoryID string) (int64, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, categoryID string) error
}
