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

const productCollectionName = "products"

type mongoProductRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewProductRepository(db *mongo.Database, log logger.Logger) repository.ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection(productCollectionName),
		log:        log,
	}
}

func (r *mongoProductRepository) Create(ctx context.Context, product *entity.Product) (string, error) {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", repository.ErrAlreadyExists
		}
		r.log.Errorf("Failed to insert product: %v", err)
		return "", fmt.Errorf("failed to insert product: %w", err)
	}
	return product.ID, nil
}

func (r *mongoProductRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find product by ID %s: %v", productID, err)
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	var product entity.Product
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find product by slug %s: %v", slug, err)
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrAlreadyExists
		}
		r.log.Errorf("Failed to update product %s: %v", product.ID, err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, productID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": productID})
	if err != nil {
		r.log.Errorf("Failed to delete product %s: %v", productID, err)
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	filter := r.buildListFilter(params)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.log.Errorf("Failed to count products: %v", err)
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	pagination := repository.NewPagination(params.Page, params.PageSize, total)
	findOptions := options.Find().
		SetSort(r.buildSort(params)).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.ItemsPerPage))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		r.log.Errorf("Failed to decode products: %v", err)
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return &repository.ListProductsResult{Products: products, Pagination: pagination}, nil
}

func (r *mongoProductRepository) buildListFilter(params repository.ListProductsParams) bson.M {
	filter := bson.M{}
	if params.ActiveOnly {
		filter["is_active"] = true
	}
	if params.FeaturedOnly {
		filter["is_featured"] = true
	}
	if params.Search != "" {
		filter["$text"] = bson.M{"$search": params.Search}
	}
	if len(params.CategoryIDs) > 0 {
		filter["category_id"] = bson.M{"$in": params.CategoryIDs}
	}

	priceFilter := bson.M{}
	if params.MinPrice > 0 {
		priceFilter["$gte"] = params.MinPrice
	}
	if params.MaxPrice > 0 {
		priceFilter["$lte"] = params.MaxPrice
	}
	if len(priceFilter) > 0 {
		filter["price"] = priceFilter
	}
	return filter
}

func (r *mongoProductRepository) buildSort(params repository.ListProductsParams) bson.D {
	order := -1
	if params.SortOrder == "asc" {
		order = 1
	}
	switch params.SortBy {
	case "price":
		return bson.D{{Key: "price", Value: order}}
	case "name":
		return bson.D{{Key: "name", Value: order}}
	case "rating":
		return bson.D{{Key: "ratings.average", Value: order}}
	case "views":
		return bson.D{{Key: "views", Value: order}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

func (r *mongoProductRepository) Featured(ctx context.Context, limit int) ([]entity.Product, error) {
	filter := bson.M{"is_featured": true, "is_active": true}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list featured products: %v", err)
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode featured products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) Related(ctx context.Context, categoryID, excludeID string, limit int) ([]entity.Product, error) {
	filter := bson.M{
		"category_id": categoryID,
		"is_active":   true,
		"_id":         bson.M{"$ne": excludeID},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "ratings.average", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list related products: %v", err)
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []entity.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode related products: %w", err)
	}
	return products, nil
}

func (r *mongoProductRepository) CountInCategory(ctx context.Context, categoryID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		r.log.Errorf("Failed to count products in category %s: %v", categoryID, err)
		return 0, fmt.Errorf("failed to count products in category: %w", err)
	}
	return count, nil
}

// DecrementStock runs a conditional update so the subtraction happens only
// when enough stock is still on hand. A zero match against a present product
// means the guard rejected the quantity.
func (r *mongoProductRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	filter := bson.M{
		"_id":   productID,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.log.Errorf("Failed to decrement stock for product %s: %v", productID, err)
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": productID})
		if err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrInsufficientStock
	}
	return nil
}

func (r *mongoProductRepository) RestoreStock(ctx context.Context, productID string, quantity int) error {
	update := bson.M{
		"$inc": bson.M{"stock": quantity},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		r.log.Errorf("Failed to restore stock for product %s: %v", productID, err)
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) SetStock(ctx context.Context, productID string, stock int) error {
	update := bson.M{"$set": bson.M{"stock": stock, "updated_at": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, update)
	if err != nil {
		r.log.Errorf("Failed to set stock for product %s: %v", productID, err)
		return fmt.Errorf("failed to set stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoProductRepository) IncrementViews(ctx context.Context, productID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}
