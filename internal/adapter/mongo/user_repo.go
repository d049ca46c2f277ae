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
)

const userCollectionName = "users"

type mongoUserRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewUserRepository(db *mongo.Database, log logger.Logger) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
		log:        log,
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) (string, error) {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		r.log.Errorf("Failed to insert user: %v", err)
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return user.ID, nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find user by ID %s: %v", userID, err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find user by email: %v", err)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		r.log.Errorf("Failed to update user %s: %v", user.ID, err)
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_login": at, "updated_at": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		r.log.Errorf("Failed to update last login for user %s: %v", userID, err)
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	filter := bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": now},
	}

	var user entity.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find user by reset token: %v", err)
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return &user, nil
}
