package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartCollectionName = "carts"

type mongoCartRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewCartRepository(db *mongo.Database, log logger.Logger) repository.CartRepository {
	return &mongoCartRepository{
		collection: db.Collection(cartCollectionName),
		log:        log,
	}
}

func (r *mongoCartRepository) GetByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var cart entity.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

// Save upserts by user and slides the TTL window forward, so any cart
// activity buys the cart another full retention period.
func (r *mongoCartRepository) Save(ctx context.Context, cart *entity.Cart, ttl time.Duration) error {
	if cart.ID == "" {
		cart.ID = primitive.NewObjectID().Hex()
	}
	cart.ExpiresAt = time.Now().UTC().Add(ttl)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"user_id": cart.UserID}, cart, opts); err != nil {
		r.log.Errorf("Failed to save cart for user %s: %v", cart.UserID, err)
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (r *mongoCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		r.log.Errorf("Failed to delete cart for user %s: %v", userID, err)
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
