package repository

import (
	"context"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

type ListProductsParams struct {
	Search       string
	CategoryIDs  []string
	MinPrice     float64
	MaxPrice     float64
	FeaturedOnly bool
	ActiveOnly   bool
	SortBy       string
	SortOrder    string
	Page         int
	PageSize     int
}

type ListProductsResult struct {
	Products   []entity.Product
	Pagination Pagination
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (string, error)
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, productID string) error
	List(ctx context.Context, params ListProductsParams) (*ListProductsResult, error)
	Featured(ctx context.Context, limit int) ([]entity.Product, error)
	Related(ctx context.Context, categoryID, excludeID string, limit int) ([]entity.Product, error)
	CountInCategory(ctx context.Context, categoryID string) (int64, error)
	// DecrementStock subtracts quantity only when the product still has at
	// least that much on hand; ErrInsufficientStock otherwise. This is the
	// oversell guard for concurrent checkouts.
	DecrementStock(ctx context.Context, productID string, quantity int) error
	RestoreStock(ctx context.Context, productID string, quantity int) error
	SetStock(ctx context.Context, productID string, stock int) error
	// IncrementViews is best-effort; callers ignore its error.
	IncrementViews(ctx context.Context, productID string) error
}
