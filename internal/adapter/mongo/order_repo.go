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

const orderCollectionName = "orders"

type mongoOrderRepository struct {
	collection *mongo.Collection
	log        logger.Logger
}

func NewOrderRepository(db *mongo.Database, log logger.Logger) repository.OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection(orderCollectionName),
		log:        log,
	}
}

func (r *mongoOrderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	if order.ID == "" {
		order.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		r.log.Errorf("Failed to insert order: %v", err)
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return order.ID, nil
}

func (r *mongoOrderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	var order entity.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		r.log.Errorf("Failed to find order by ID %s: %v", orderID, err)
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// Update replaces the document only if the stored version still matches the
// version the caller read, then bumps it. A zero match against an existing
// order means a concurrent writer won.
func (r *mongoOrderRepository) Update(ctx context.Context, order *entity.Order) error {
	currentVersion := order.Version
	order.Version++
	order.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": order.ID, "version": currentVersion}
	result, err := r.collection.ReplaceOne(ctx, filter, order)
	if err != nil {
		order.Version = currentVersion
		r.log.Errorf("Failed to update order %s: %v", order.ID, err)
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		order.Version = currentVersion
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": order.ID})
		if err != nil {
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if exists == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrOptimisticLock
	}
	return nil
}

func (r *mongoOrderRepository) Delete(ctx context.Context, orderID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		r.log.Errorf("Failed to delete order %s: %v", orderID, err)
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoOrderRepository) List(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.Status != "" {
		filter["status"] = params.Status
	}
	if params.PaymentStatus != "" {
		filter["payment.status"] = params.PaymentStatus
	}

	dateFilter := bson.M{}
	if params.StartDate != nil {
		dateFilter["$gte"] = *params.StartDate
	}
	if params.EndDate != nil {
		dateFilter["$lte"] = *params.EndDate
	}
	if len(dateFilter) > 0 {
		filter["created_at"] = dateFilter
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.log.Errorf("Failed to count orders: %v", err)
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	pagination := repository.NewPagination(params.Page, params.PageSize, total)
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(pagination.Skip()).
		SetLimit(int64(pagination.ItemsPerPage))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []entity.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return &repository.ListOrdersResult{Orders: orders, Pagination: pagination}, nil
}

func (r *mongoOrderRepository) Stats(ctx context.Context) (*repository.OrderStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.log.Errorf("Failed to aggregate order stats: %v", err)
		return nil, fmt.Errorf("failed to aggregate order stats: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode order stats: %w", err)
	}

	stats := &repository.OrderStats{}
	for _, b := range buckets {
		stats.TotalOrders += b.Count
		switch entity.OrderStatus(b.Status) {
		case entity.OrderPending:
			stats.PendingOrders = b.Count
		case entity.OrderProcessing:
			stats.ProcessingOrders = b.Count
		case entity.OrderShipped:
			stats.ShippedOrders = b.Count
		case entity.OrderDelivered:
			stats.DeliveredOrders = b.Count
		case entity.OrderCancelled:
			stats.CancelledOrders = b.Count
		}
	}

	// Revenue counts only captured payments.
	revenuePipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment.status": entity.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_price"},
		}}},
	}
	revCursor, err := r.collection.Aggregate(ctx, revenuePipeline)
	if err != nil {
		r.log.Errorf("Failed to aggregate revenue: %v", err)
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer revCursor.Close(ctx)

	var revenue []struct {
		Total float64 `bson:"total"`
	}
	if err := revCursor.All(ctx, &revenue); err != nil {
		return nil, fmt.Errorf("failed to decode revenue: %w", err)
	}
	if len(revenue) > 0 {
		stats.TotalRevenue = revenue[0].Total
	}
	return stats, nil
}

func (r *mongoOrderRepository) Recent(ctx context.Context, limit int) ([]entity.Order, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		r.log.Errorf("Failed to list recent orders: %v", err)
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []entity.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode recent orders: %w", err)
	}
	return orders, nil
}
