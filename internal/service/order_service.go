package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/email"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/nats"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/adapter/payment"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/app/config"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/repository"
)

const recentOrdersLimit = 5

type CreateOrderInput struct {
	AddressID     string
	PaymentMethod string
	Notes         string
}

// CheckoutPayload is returned for gateway orders so the client can open the
// payment widget.
type CheckoutPayload struct {
	GatewayOrderID string  `json:"gatewayOrderId"`
	Amount         int64   `json:"amount"`
	Currency       string  `json:"currency"`
	KeyID          string  `json:"keyId"`
	OrderNumber    string  `json:"orderNumber"`
	Total          float64 `json:"total"`
}

type CreateOrderResult struct {
	Order    *entity.Order    `json:"order"`
	Checkout *CheckoutPayload `json:"checkout,omitempty"`
}

type UpdateStatusInput struct {
	Status         string
	Note           string
	Notes          string
	TrackingNumber string
	CourierName    string
}

type OrderStatsResult struct {
	Stats  *repository.OrderStats `json:"stats"`
	Recent []entity.Order         `json:"recentOrders"`
}

// OrderEvent is the payload published on order subjects.
type OrderEvent struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	TotalPrice  float64   `json:"totalPrice"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type OrderService struct {
	orders     repository.OrderRepository
	products   repository.ProductRepository
	carts      repository.CartRepository
	users      repository.UserRepository
	gateway    payment.Gateway
	sender     email.Sender
	publisher  nats.EventPublisher
	paymentCfg config.PaymentConfig
	log        logger.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	users repository.UserRepository,
	gateway payment.Gateway,
	sender email.Sender,
	publisher nats.EventPublisher,
	paymentCfg config.PaymentConfig,
	log logger.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		products:   products,
		carts:      carts,
		users:      users,
		gateway:    gateway,
		sender:     sender,
		publisher:  publisher,
		paymentCfg: paymentCfg,
		log:        log,
	}
}

// CreateOrder turns the user's cart into a pending order. All validation
// happens before anything is written: stock is checked per line and the
// whole request fails on the first shortfall. For gateway payments a payment
// intent is registered; if that fails the freshly created order is deleted
// again. COD orders are finalized immediately.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*CreateOrderResult, error) {
	if !entity.ValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("unsupported payment method %q", input.PaymentMethod)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	addr, err := resolveAddress(user, input.AddressID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]entity.OrderItem, 0, len(cart.Items))
	var subtotal float64
	for _, line := range cart.Items {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("product %s no longer available: %w", line.ProductID, repository.ErrNotFound)
			}
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %q no longer available: %w", product.Name, repository.ErrNotFound)
		}
		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}

		items = append(items, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.MainImage(),
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		subtotal += product.Price * float64(line.Quantity)
	}

	order, err := entity.NewOrder(userID, items, *addr, entity.PaymentMethod(input.PaymentMethod))
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(subtotal)
	order.ItemsPrice = totals.ItemsPrice
	order.TaxPrice = totals.TaxPrice
	order.ShippingPrice = totals.ShippingPrice
	order.TotalPrice = totals.TotalPrice
	order.Notes = input.Notes

	if _, err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if order.PaymentMethod == entity.PaymentMethodGateway {
		gwOrder, err := s.gateway.CreateOrder(ctx, order.TotalPrice, order.OrderNumber)
		if err != nil {
			// Compensate: a pending order without a payment intent is
			// unrecoverable from the client side.
			if delErr := s.orders.Delete(ctx, order.ID); delErr != nil {
				s.log.Errorf("Failed to delete order %s after payment setup failure: %v", order.ID, delErr)
			}
			s.log.Errorf("Payment setup failed for order %s: %v", order.OrderNumber, err)
			return nil, ErrPaymentSetup
		}

		order.Payment.GatewayOrderID = gwOrder.ID
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to attach gateway order: %w", err)
		}

		return &CreateOrderResult{
			Order: order,
			Checkout: &CheckoutPayload{
				GatewayOrderID: gwOrder.ID,
				Amount:         gwOrder.Amount,
				Currency:       gwOrder.Currency,
				KeyID:          s.paymentCfg.KeyID,
				OrderNumber:    order.OrderNumber,
				Total:          order.TotalPrice,
			},
		}, nil
	}

	if err := s.finalizeOrder(ctx, order, user); err != nil {
		return nil, err
	}
	return &CreateOrderResult{Order: order}, nil
}

// VerifyPayment checks the checkout callback signature for a gateway order.
// A tampered signature marks the payment failed but leaves the order pending
// so the client can retry; a valid one finalizes the order.
func (s *OrderService) VerifyPayment(ctx context.Context, userID, orderID, gatewayPaymentID, signature string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if order.PaymentMethod != entity.PaymentMethodGateway {
		return nil, fmt.Errorf("order %s is not a gateway order", order.OrderNumber)
	}
	if order.Payment.Status == entity.PaymentCompleted {
		return order, nil
	}

	if !s.gateway.VerifySignature(order.Payment.GatewayOrderID, gatewayPaymentID, signature) {
		order.MarkPaymentFailed()
		if err := s.orders.Update(ctx, order); err != nil {
			s.log.Errorf("Failed to record payment failure for order %s: %v", order.ID, err)
		}
		s.log.Warnf("Signature mismatch for order %s, payment %s", order.OrderNumber, gatewayPaymentID)
		return nil, ErrPaymentVerification
	}

	// Audit read; verification already succeeded via the signature.
	if p, err := s.gateway.FetchPayment(ctx, gatewayPaymentID); err != nil {
		s.log.Warnf("Failed to fetch payment %s for audit: %v", gatewayPaymentID, err)
	} else {
		s.log.Infof("Payment %s captured, method=%s amount=%d", p.ID, p.Method, p.Amount)
	}

	order.MarkPaymentCompleted(gatewayPaymentID, signature)

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.finalizeOrder(ctx, order, user); err != nil {
		return nil, err
	}
	return order, nil
}

// finalizeOrder moves a paid (or COD) order into processing: stock is
// decremented per line through the conditional guard, the cart is cleared and
// confirmation email plus order.created event go out best-effort.
func (s *OrderService) finalizeOrder(ctx context.Context, order *entity.Order, user *entity.User) error {
	if err := order.Transition(entity.OrderProcessing, "order confirmed"); err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			// Stock moved between validation and now. The payment may
			// already be captured, so the order goes through and the
			// shortfall is left for the admin to resolve.
			s.log.Errorf("Failed to decrement stock for product %s on order %s: %v",
				item.ProductID, order.OrderNumber, err)
		}
	}

	if err := s.carts.DeleteByUserID(ctx, order.UserID); err != nil {
		s.log.Warnf("Failed to clear cart for user %s: %v", order.UserID, err)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to finalize order: %w", err)
	}

	s.sendOrderEmail(user, order, email.OrderConfirmationMessage(user.Name, order))
	s.publishEvent(nats.SubjectOrderCreated, order)
	return nil
}

// CancelOrder is the customer-facing cancellation: only pending and
// processing orders qualify. The cancelled status is persisted first; stock
// restore and refund run only after that write succeeds, so a version
// conflict never triggers either. A refund failure is logged but does not
// undo the cancellation.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID, reason string) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	if !order.CanBeCancelled() {
		return nil, ErrOrderNotCancellable
	}

	note := "cancelled by customer"
	if reason != "" {
		note = fmt.Sprintf("cancelled by customer: %s", reason)
	}
	if err := order.Transition(entity.OrderCancelled, note); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.restoreStock(ctx, order)
	s.refundIfPaid(ctx, order)
	if order.Payment.Status == entity.PaymentRefunded {
		if err := s.orders.Update(ctx, order); err != nil {
			s.log.Errorf("Failed to record refund for order %s: %v", order.OrderNumber, err)
		}
	}

	if user, err := s.users.GetByID(ctx, userID); err == nil {
		s.sendOrderEmail(user, order, email.OrderStatusMessage(user.Name, order))
	}
	s.publishEvent(nats.SubjectOrderStatusUpdated, order)
	return order, nil
}

// UpdateStatus is the admin transition. Moving to cancelled restores stock
// and refunds like a customer cancellation; the status email goes out only
// when the status actually changed.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, input UpdateStatusInput) (*entity.Order, error) {
	if !entity.ValidOrderStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidTransition, input.Status)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	newStatus := entity.OrderStatus(input.Status)
	if err := order.Transition(newStatus, input.Note); err != nil {
		return nil, err
	}
	changed := order.Status != previous

	if input.TrackingNumber != "" {
		order.TrackingNumber = input.TrackingNumber
	}
	if input.CourierName != "" {
		order.CourierName = input.CourierName
	}
	if input.Notes != "" {
		order.Notes = input.Notes
	}

	if changed && newStatus == entity.OrderDelivered && order.PaymentMethod == entity.PaymentMethodCOD {
		now := time.Now().UTC()
		order.Payment.Status = entity.PaymentCompleted
		order.Payment.PaidAt = &now
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	if changed && newStatus == entity.OrderCancelled {
		s.restoreStock(ctx, order)
		s.refundIfPaid(ctx, order)
		if order.Payment.Status == entity.PaymentRefunded {
			if err := s.orders.Update(ctx, order); err != nil {
				s.log.Errorf("Failed to record refund for order %s: %v", order.OrderNumber, err)
			}
		}
	}

	if changed {
		if user, err := s.users.GetByID(ctx, order.UserID); err == nil {
			s.sendOrderEmail(user, order, email.OrderStatusMessage(user.Name, order))
		}
		s.publishEvent(nats.SubjectOrderStatusUpdated, order)
	}
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, userID string, page, limit int) (*repository.ListOrdersResult, error) {
	return s.orders.List(ctx, repository.ListOrdersParams{
		UserID:   userID,
		Page:     page,
		PageSize: limit,
	})
}

// GetOrder enforces ownership for customers; admins can read any order.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string, isAdmin bool) (*entity.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *OrderService) AdminListOrders(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	return s.orders.List(ctx, params)
}

func (s *OrderService) Stats(ctx context.Context) (*OrderStatsResult, error) {
	stats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orders.Recent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, err
	}
	return &OrderStatsResult{Stats: stats, Recent: recent}, nil
}

// restoreStock puts every line's quantity back. A product deleted since the
// order was placed is skipped with a warning.
func (s *OrderService) restoreStock(ctx context.Context, order *entity.Order) {
	for _, item := range order.Items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warnf("Product %s from order %s no longer exists, skipping stock restore",
					item.ProductID, order.OrderNumber)
				continue
			}
			s.log.Errorf("Failed to restore stock for product %s: %v", item.ProductID, err)
		}
	}
}

func (s *OrderService) refundIfPaid(ctx context.Context, order *entity.Order) {
	if order.Payment.Status != entity.PaymentCompleted {
		return
	}
	if err := s.gateway.Refund(ctx, order.Payment.GatewayPaymentID, order.TotalPrice); err != nil {
		s.log.Errorf("Refund failed for order %s, payment %s: %v",
			order.OrderNumber, order.Payment.GatewayPaymentID, err)
		return
	}
	order.MarkPaymentRefunded()
}

func resolveAddress(user *entity.User, addressID string) (*entity.Address, error) {
	if addressID != "" {
		if addr := user.FindAddress(addressID); addr != nil {
			return addr, nil
		}
		return nil, ErrNoShippingAddress
	}
	if addr := user.DefaultAddress(); addr != nil {
		return addr, nil
	}
	return nil, ErrNoShippingAddress
}

func (s *OrderService) sendOrderEmail(user *entity.User, order *entity.Order, msg email.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailTimeout)
		defer cancel()
		if err := s.sender.Send(ctx, []string{user.Email}, msg.Subject, msg.BodyHTML, msg.BodyText); err != nil {
			s.log.Warnf("Order email for %s failed: %v", order.OrderNumber, err)
		}
	}()
}

func (s *OrderService) publishEvent(subject string, order *entity.Order) {
	event := OrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      string(order.Status),
		TotalPrice:  order.TotalPrice,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(subject, event); err != nil {
		s.log.Warnf("Failed to publish %s for order %s: %v", subject, order.OrderNumber, err)
	}
}
