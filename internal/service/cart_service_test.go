package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const (
	testCartTTL  = 720 * time.Hour
	testCacheTTL = 5 * time.Minute
)

func newCartService(carts *MockCartRepository, products *MockProductRepository, cache *MockProductDetailCache) *CartService {
	return NewCartService(carts, products, cache, testCartTTL, testCacheTTL, logger.NoOp{})
}

func cachedInfo(id string, price float64, stock int) *repository.ProductInfo {
	return &repository.ProductInfo{
		ID:       id,
		Name:     "Steel Serving Tray",
		Slug:     "steel-serving-tray",
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
}

func TestCartService_AddItem_NewLine(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	cache.On("Get", ctx, "prod-1").Return(cachedInfo("prod-1", 150.0, 10), nil)
	carts.On("GetByUserID", ctx, "user-1").Return(nil, repository.ErrNotFound)
	carts.On("Save", ctx, mock.AnythingOfType("*entity.Cart"), testCartTTL).Return(nil)

	view, err := svc.AddItem(ctx, "user-1", "prod-1", 2)

	assert.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.TotalItems)
	assert.Equal(t, 300.0, view.TotalPrice)
	carts.AssertExpectations(t)
}

func TestCartService_AddItem_MergeExceedsStock(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	cart := entity.NewCart("user-1")
	cart.AddItem("prod-1", 4, 150)

	cache.On("Get", ctx, "prod-1").Return(cachedInfo("prod-1", 150.0, 5), nil)
	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 3)

	var stockErr *InsufficientStockError
	assert.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, "Steel Serving Tray", stockErr.ProductName)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartService_AddItem_InactiveProduct(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	info := cachedInfo("prod-1", 150.0, 5)
	info.IsActive = false
	cache.On("Get", ctx, "prod-1").Return(info, nil)

	_, err := svc.AddItem(ctx, "user-1", "prod-1", 1)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartService_UpdateItem_ZeroRemovesLine(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	cart := entity.NewCart("user-1")
	cart.AddItem("prod-1", 2, 150)
	itemID := cart.Items[0].ID

	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)
	carts.On("Save", ctx, cart, testCartTTL).Return(nil)

	view, err := svc.UpdateItem(ctx, "user-1", itemID, 0)

	assert.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.TotalItems)
	assert.Equal(t, 0.0, view.TotalPrice)
}

func TestCartService_UpdateItem_UnknownLine(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	cart := entity.NewCart("user-1")
	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)

	_, err := svc.UpdateItem(ctx, "user-1", "missing-line", 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCartService_SyncCart_SkipsBadItems(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	carts.On("GetByUserID", ctx, "user-1").Return(nil, repository.ErrNotFound)
	carts.On("Save", ctx, mock.AnythingOfType("*entity.Cart"), testCartTTL).Return(nil)

	// Good product.
	cache.On("Get", ctx, "prod-ok").Return(cachedInfo("prod-ok", 100.0, 10), nil)
	// Deleted product: cache miss, repo miss.
	cache.On("Get", ctx, "prod-gone").Return(nil, repository.ErrNotFound)
	products.On("GetByID", ctx, "prod-gone").Return(nil, repository.ErrNotFound)
	// Inactive product.
	inactive := cachedInfo("prod-off", 100.0, 10)
	inactive.IsActive = false
	cache.On("Get", ctx, "prod-off").Return(inactive, nil)
	// Not enough stock.
	cache.On("Get", ctx, "prod-low").Return(cachedInfo("prod-low", 100.0, 1), nil)

	view, err := svc.SyncCart(ctx, "user-1", []SyncCartItem{
		{ProductID: "prod-ok", Quantity: 2},
		{ProductID: "prod-gone", Quantity: 1},
		{ProductID: "prod-off", Quantity: 1},
		{ProductID: "prod-low", Quantity: 5},
	})

	assert.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, "prod-ok", view.Items[0].ProductID)
	assert.Equal(t, 2, view.TotalItems)
}

func TestCartService_GetCart_PrunesDeadLines(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	cart := entity.NewCart("user-1")
	cart.AddItem("prod-ok", 1, 100)
	cart.AddItem("prod-gone", 2, 50)

	carts.On("GetByUserID", ctx, "user-1").Return(cart, nil)
	carts.On("Save", ctx, cart, testCartTTL).Return(nil)
	cache.On("Get", ctx, "prod-ok").Return(cachedInfo("prod-ok", 100.0, 10), nil)
	cache.On("Get", ctx, "prod-gone").Return(nil, repository.ErrNotFound)
	products.On("GetByID", ctx, "prod-gone").Return(nil, repository.ErrNotFound)

	view, err := svc.GetCart(ctx, "user-1")

	assert.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.TotalItems)
	assert.Equal(t, 100.0, view.TotalPrice)
	carts.AssertCalled(t, "Save", ctx, cart, testCartTTL)
}

func TestCartService_GetCart_EmptyOnFirstTouch(t *testing.T) {
	carts := new(MockCartRepository)
	products := new(MockProductRepository)
	cache := new(MockProductDetailCache)
	svc := newCartService(carts, products, cache)
	ctx := context.Background()

	carts.On("GetByUserID", ctx, "user-1").Return(nil, repository.ErrNotFound)

	view, err := svc.GetCart(ctx, "user-1")

	assert.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.TotalPrice)
	carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}
