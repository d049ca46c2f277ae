package repository

import (
	"context"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
)

type ListOrdersParams struct {
	UserID        string
	Status        string
	PaymentStatus string
	StartDate     *time.Time
	EndDate       *time.Time
	Page          int
	PageSize      int
}

type ListOrdersResult struct {
	Orders     []entity.Order
	Pagination Pagination
}

// OrderStats is the admin dashboard snapshot.
type OrderStats struct {
	TotalOrders      int64   `json:"totalOrders"`
	PendingOrders    int64   `json:"pendingOrders"`
	ProcessingOrders int64   `json:"processingOrders"`
	ShippedOrders    int64   `json:"shippedOrders"`
	DeliveredOrders  int64   `json:"deliveredOrders"`
	CancelledOrders  int64   `json:"cancelledOrders"`
	TotalRevenue     float64 `json:"totalRevenue"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) (string, error)
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)
	// Update replaces the document guarded by the order's version;
	// ErrOptimisticLock when another writer got there first.
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, orderID string) error
	List(ctx context.Context, params ListOrdersParams) (*ListOrdersResult, error)
	Stats(ctx context.Context) (*OrderStats, error)
	Recent(ctx context.Context, limit int) ([]entity.Order, error)
}
