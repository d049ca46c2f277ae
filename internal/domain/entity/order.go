package entity

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderPacked     OrderStatus = "packed"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodGateway PaymentMethod = "razorpay"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// validTransitions is the single source of truth for order progression.
// delivered, cancelled and returned are terminal.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderPacked, OrderShipped, OrderCancelled},
	OrderPacked:     {OrderShipped},
	OrderShipped:    {OrderDelivered, OrderReturned},
	OrderDelivered:  {},
	OrderCancelled:  {},
	OrderReturned:   {},
}

func ValidOrderStatus(s string) bool {
	_, ok := validTransitions[OrderStatus(s)]
	return ok
}

func ValidPaymentMethod(s string) bool {
	switch PaymentMethod(s) {
	case PaymentMethodCOD, PaymentMethodGateway:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Name      string  `bson:"name" json:"name"`
	Image     string  `bson:"image,omitempty" json:"image,omitempty"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Price     float64 `bson:"price" json:"price"`
}

type PaymentDetails struct {
	GatewayOrderID   string        `bson:"gateway_order_id,omitempty" json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string        `bson:"gateway_payment_id,omitempty" json:"gatewayPaymentId,omitempty"`
	GatewaySignature string        `bson:"gateway_signature,omitempty" json:"-"`
	Status           PaymentStatus `bson:"status" json:"status"`
	PaidAt           *time.Time    `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
}

type StatusChange struct {
	Status    OrderStatus `bson:"status" json:"status"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
}

type Order struct {
	ID              string          `bson:"_id,omitempty" json:"id"`
	UserID          string          `bson:"user_id" json:"userId"`
	OrderNumber     string          `bson:"order_number" json:"orderNumber"`
	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress Address         `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `bson:"payment_method" json:"paymentMethod"`
	Payment         PaymentDetails  `bson:"payment" json:"payment"`
	ItemsPrice      float64         `bson:"items_price" json:"itemsPrice"`
	TaxPrice        float64         `bson:"tax_price" json:"taxPrice"`
	ShippingPrice   float64         `bson:"shipping_price" json:"shippingPrice"`
	DiscountPrice   float64         `bson:"discount_price" json:"discountPrice"`
	TotalPrice      float64         `bson:"total_price" json:"totalPrice"`
	Status          OrderStatus     `bson:"status" json:"orderStatus"`
	StatusHistory   []StatusChange  `bson:"status_history" json:"statusHistory"`
	DeliveredAt     *time.Time      `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time      `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	ReturnedAt      *time.Time      `bson:"returned_at,omitempty" json:"returnedAt,omitempty"`
	TrackingNumber  string          `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	CourierName     string          `bson:"courier_name,omitempty" json:"courierName,omitempty"`
	Notes           string          `bson:"notes,omitempty" json:"notes,omitempty"`
	Version         int             `bson:"version" json:"-"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

func NewOrder(userID string, items []OrderItem, shippingAddr Address, method PaymentMethod) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	now := time.Now().UTC()
	order := &Order{
		UserID:          userID,
		OrderNumber:     NewOrderNumber(now),
		Items:           items,
		ShippingAddress: shippingAddr,
		PaymentMethod:   method,
		Payment:         PaymentDetails{Status: PaymentPending},
		Status:          OrderPending,
		StatusHistory:   []StatusChange{{Status: OrderPending, UpdatedAt: now}},
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return order, nil
}

// NewOrderNumber builds the human-readable order code, ORDyymmddNNNN.
// Generated once at creation and never reused.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD%s%04d", now.Format("060102"), 1000+rand.Intn(9000))
}

func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderPending, OrderProcessing:
		return true
	}
	return false
}

// Transition moves the order to newStatus if the transition table allows it,
// appending to the immutable status history and stamping the delivery,
// cancellation or return time. deliveredAt is stamped exactly once.
func (o *Order) Transition(newStatus OrderStatus, note string) error {
	if o.Status == newStatus {
		return nil
	}
	allowed, ok := validTransitions[o.Status]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, o.Status)
	}
	permitted := false
	for _, s := range allowed {
		if s == newStatus {
			permitted = true
			break
		}
	}
	if !permitted {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, newStatus)
	}

	now := time.Now().UTC()
	o.Status = newStatus
	o.StatusHistory = append(o.StatusHistory, StatusChange{Status: newStatus, Note: note, UpdatedAt: now})
	switch newStatus {
	case OrderDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	case OrderCancelled:
		o.CancelledAt = &now
	case OrderReturned:
		o.ReturnedAt = &now
	}
	o.UpdatedAt = now
	return nil
}

func (o *Order) MarkPaymentFailed() {
	o.Payment.Status = PaymentFailed
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) MarkPaymentCompleted(paymentID, signature string) {
	now := time.Now().UTC()
	o.Payment.GatewayPaymentID = paymentID
	o.Payment.GatewaySignature = signature
	o.Payment.Status = PaymentCompleted
	o.Payment.PaidAt = &now
	o.UpdatedAt = now
}

func (o *Order) MarkPaymentRefunded() {
	o.Payment.Status = PaymentRefunded
	o.UpdatedAt = time.Now().UTC()
}
