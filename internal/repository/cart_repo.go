package repository

import (
	"context"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Cart, error)
	// Save upserts the cart by user and pushes the expiry out by ttl; a TTL
	// index on expires_at purges carts untouched for that long.
	Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error
	DeleteByUserID(ctx context.Context, userID string) error
}
