package repository

import (
	"context"
	"time"
)

// ProductInfo is the slim product projection cached for cart enrichment so
// cart reads do not hit the products collection for every line.
type ProductInfo struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"`
	MRP      float64 `json:"mrp,omitempty"`
	Image    string  `json:"image,omitempty"`
	Stock    int     `json:"stock"`
	IsActive bool    `json:"isActive"`
}

type ProductDetailCache interface {
	Get(ctx context.Context, productID string) (*ProductInfo, error)
	Set(ctx context.Context, productID string, info *ProductInfo, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
