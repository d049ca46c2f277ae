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

const categoryCollectionName = "categories"

type mongoCategoryRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewCategoryRepository(db *mongo.Database, log logger.Logger) repository.CategoryRepository {
	return &mongoCategoryRepository{
		collection: db.Collection(categoryCollectionName),
		log:        log,
	}
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *entity.Category) (string, error) {
	if category.ID == "" {
		category.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		r.log.Errorf("Failed to insert category: %v", err)
		return "", fmt.Errorf("failed to insert category: %w", err)
	}
	return category.ID, nil
}

func (r *mongoCategoryRepository) GetByID(ctx context.Context, categoryID string) (*entity.Category, error) {
	var category entity.Category
	err := r.collection.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find category by ID %s: %v", categoryID, err)
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (r *mongoCategoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	var category entity.Category
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find category by slug %s: %v", slug, err)
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &category, nil
}

func (r *mongoCategoryRepository) List(ctx context.Context, params repository.ListCategoriesParams) ([]entity.Category, error) {
	filter := bson.M{}
	if params.ActiveOnly {
		filter["is_active"] = true
	}
	if params.RootsOnly {
		filter["parent_id"] = bson.M{"$in": bson.A{nil, ""}}
	} else if params.ParentID != "" {
		filter["parent_id"] = params.ParentID
	}

	findOptions := options.Find().SetSort(bson.D{
		{Key: "display_order", Value: 1},
		{Key: "name", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []entity.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (r *mongoCategoryRepository) CountChildren(ctx context.Context, categoryID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"parent_id": categoryID})
	if err != nil {
		r.log.Errorf("Failed to count child categories of %s: %v", categoryID, err)
		return 0, fmt.Errorf("failed to count child categories: %w", err)
	}
	return count, nil
}

func (r *mongoCategoryRepository) Update(ctx context.Context, category *entity.Category) error {
	category.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		r.log.Errorf("Failed to update category %s: %v", category.ID, err)
		return fmt.Errorf("failed to update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, categoryID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": categoryID})
	if err != nil {
		r.log.Errorf("Failed to delete category %s: %v", categoryID, err)
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
