package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

// CartItemView is a cart line enriched with current product details for
// display. Price is the captured price at add time; CurrentPrice reflects the
// catalog now.
type CartItemView struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image,omitempty"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	CurrentPrice float64   `json:"currentPrice"`
	Stock        int       `json:"stock"`
	AddedAt      time.Time `json:"addedAt"`
}

type CartView struct {
	ID         string         `json:"id,omitempty"`
	UserID     string         `json:"userId"`
	Items      []CartItemView `json:"items"`
	TotalItems int            `json:"totalItems"`
	TotalPrice float64        `json:"totalPrice"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

type SyncCartItem struct {
	ProductID string
	Quantity  int
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    repository.ProductDetailCache
	cartTTL  time.Duration
	cacheTTL time.Duration
	log      logger.Logger
}

func NewCartService(
	carts repository.CartRepository,
	products repository.ProductRepository,
	cache repository.ProductDetailCache,
	cartTTL, cacheTTL time.Duration,
	log logger.Logger,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cache,
		cartTTL:  cartTTL,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// GetCart returns the user's cart, creating an empty one on first touch.
// Lines whose product has been removed or deactivated are dropped before the
// cart is returned.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	view, pruned, err := s.buildView(ctx, cart)
	if err != nil {
		return nil, err
	}
	if pruned {
		if err := s.carts.Save(ctx, cart, s.cartTTL); err != nil {
			return nil, err
		}
		view, _, err = s.buildView(ctx, cart)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	info, err := s.productInfo(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !info.IsActive {
		return nil, repository.ErrNotFound
	}

	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// A merge must not push the line past the available stock.
	merged := quantity
	if existing := cart.FindItemByProduct(productID); existing != nil {
		merged += existing.Quantity
	}
	if merged > info.Stock {
		return nil, &InsufficientStockError{ProductName: info.Name, Available: info.Stock}
	}

	cart.AddItem(productID, quantity, info.Price)
	if err := s.carts.Save(ctx, cart, s.cartTTL); err != nil {
		return nil, err
	}
	view, _, err := s.buildView(ctx, cart)
	return view, err
}

func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*CartView, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	item := cart.FindItem(itemID)
	if item == nil {
		return nil, repository.ErrNotFound
	}

	price := item.Price
	if quantity > 0 {
		info, err := s.productInfo(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if quantity > info.Stock {
			return nil, &InsufficientStockError{ProductName: info.Name, Available: info.Stock}
		}
		price = info.Price
	}

	cart.SetItemQuantity(itemID, quantity, price)
	if err := s.carts.Save(ctx, cart, s.cartTTL); err != nil {
		return nil, err
	}
	view, _, err := s.buildView(ctx, cart)
	return view, err
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*CartView, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.GetCart(ctx, userID)
		}
		return nil, err
	}

	cart.RemoveItem(itemID)
	if err := s.carts.Save(ctx, cart, s.cartTTL); err != nil {
		return nil, err
	}
	view, _, err := s.buildView(ctx, cart)
	return view, err
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.carts.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SyncCart merges a client-side cart (for example one built before login)
// into the stored cart. Items that are missing, inactive or short on stock
// are skipped silently rather than failing the whole sync.
func (s *CartService) SyncCart(ctx context.Context, userID string, items []SyncCartItem) (*CartView, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, in := range items {
		if in.Quantity < 1 {
			continue
		}
		info, err := s.productInfo(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !info.IsActive {
			continue
		}

		merged := in.Quantity
		if existing := cart.FindItemByProduct(in.ProductID); existing != nil {
			merged += existing.Quantity
		}
		if merged > info.Stock {
			s.log.Debugf("Skipping sync of product %s: requested %d, stock %d", in.ProductID, merged, info.Stock)
			continue
		}
		cart.AddItem(in.ProductID, in.Quantity, info.Price)
	}

	if err := s.carts.Save(ctx, cart, s.cartTTL); err != nil {
		return nil, err
	}
	view, _, err := s.buildView(ctx, cart)
	return view, err
}

func (s *CartService) loadOrCreate(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return entity.NewCart(userID), nil
		}
		return nil, err
	}
	return cart, nil
}

// buildView resolves product info for every line, dropping lines whose
// product no longer exists or is inactive. pruned reports whether any line
// was removed.
func (s *CartService) buildView(ctx context.Context, cart *entity.Cart) (*CartView, bool, error) {
	views := make([]CartItemView, 0, len(cart.Items))
	var dead []string

	for _, item := range cart.Items {
		info, err := s.productInfo(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				dead = append(dead, item.ID)
				continue
			}
			return nil, false, err
		}
		if !info.IsActive {
			dead = append(dead, item.ID)
			continue
		}
		views = append(views, CartItemView{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Name:         info.Name,
			Slug:         info.Slug,
			Image:        info.Image,
			Quantity:     item.Quantity,
			Price:        item.Price,
			CurrentPrice: info.Price,
			Stock:        info.Stock,
			AddedAt:      item.AddedAt,
		})
	}

	for _, id := range dead {
		cart.RemoveItem(id)
	}

	return &CartView{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      views,
		TotalItems: cart.TotalItems,
		TotalPrice: cart.TotalPrice,
		UpdatedAt:  cart.UpdatedAt,
	}, len(dead) > 0, nil
}

// productInfo reads the slim product projection through the redis cache,
// falling back to the products collection and repopulating on a miss.
func (s *CartService) productInfo(ctx context.Context, productID string) (*repository.ProductInfo, error) {
	info, err := s.cache.Get(ctx, productID)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Product cache read failed for %s: %v", productID, err)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	info = &repository.ProductInfo{
		ID:       product.ID,
		Name:     product.Name,
		Slug:     product.Slug,
		Price:    product.Price,
		MRP:      product.MRP,
		Image:    product.MainImage(),
		Stock:    product.Stock,
		IsActive: product.IsActive,
	}
	if err := s.cache.Set(ctx, productID, info, s.cacheTTL); err != nil {
		s.log.Warnf("Product cache write failed for %s: %v", productID, err)
	}
	return info, nil
}
