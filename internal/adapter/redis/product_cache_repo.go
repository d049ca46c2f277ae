package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const productDetailKeyPrefix = "product_detail:"

type redisProductDetailCache struct {
	client *redis.Client
	log    logger.Logger
}

func NewProductDetailCache(client *redis.Client, log logger.Logger) repository.ProductDetailCache {
	return &redisProductDetailCache{client: client, log: log}
}

func (c *redisProductDetailCache) key(productID string) string {
	return productDetailKeyPrefix + productID
}

func (c *redisProductDetailCache) Get(ctx context.Context, productID string) (*repository.ProductInfo, error) {
	data, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		c.log.Errorf("Failed to get product %s from cache: %v", productID, err)
		return nil, fmt.Errorf("failed to get product from cache: %w", err)
	}

	var info repository.ProductInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &info, nil
}

func (c *redisProductDetailCache) Set(ctx context.Context, productID string, info *repository.ProductInfo, ttl time.Duration) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal product for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(productID), data, ttl).Err(); err != nil {
		c.log.Errorf("Failed to cache product %s: %v", productID, err)
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

func (c *redisProductDetailCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		c.log.Errorf("Failed to evict product %s from cache: %v", productID, err)
		return fmt.Errorf("failed to evict product from cache: %w", err)
	}
	return nil
}
