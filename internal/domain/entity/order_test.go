package entity

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleOrder(t *testing.T) *Order {
	t.Helper()
	order, err := NewOrder("user-1", []OrderItem{
		{ProductID: "prod-1", Name: "Tray", Quantity: 2, Price: 150},
	}, Address{Street: "14 Market Road"}, PaymentMethodCOD)
	assert.NoError(t, err)
	return order
}

func TestNewOrder_Validation(t *testing.T) {
	_, err := NewOrder("", []OrderItem{{ProductID: "p", Quantity: 1}}, Address{}, PaymentMethodCOD)
	assert.Error(t, err)

	_, err = NewOrder("user-1", nil, Address{}, PaymentMethodCOD)
	assert.Error(t, err)
}

func TestNewOrder_StartsPendingWithHistory(t *testing.T) {
	order := sampleOrder(t)

	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, PaymentPending, order.Payment.Status)
	assert.Len(t, order.StatusHistory, 1)
	assert.Equal(t, OrderPending, order.StatusHistory[0].Status)
}

func TestNewOrderNumber_Shape(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	n := NewOrderNumber(now)
	assert.Regexp(t, regexp.MustCompile(`^ORD260831\d{4}$`), n)
}

func TestOrder_Transition_Table(t *testing.T) {
	tests := []struct {
		name string
		path []OrderStatus
		ok   bool
	}{
		{"full happy path", []OrderStatus{OrderProcessing, OrderPacked, OrderShipped, OrderDelivered}, true},
		{"skip packed", []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered}, true},
		{"return after shipping", []OrderStatus{OrderProcessing, OrderShipped, OrderReturned}, true},
		{"cancel while pending", []OrderStatus{OrderCancelled}, true},
		{"cancel while processing", []OrderStatus{OrderProcessing, OrderCancelled}, true},
		{"deliver from pending", []OrderStatus{OrderDelivered}, false},
		{"cancel after shipping", []OrderStatus{OrderProcessing, OrderShipped, OrderCancelled}, false},
		{"reopen delivered", []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderProcessing}, false},
		{"reopen cancelled", []OrderStatus{OrderCancelled, OrderProcessing}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder(t)
			var err error
			for _, status := range tt.path {
				err = order.Transition(status, "")
				if err != nil {
					break
				}
			}
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestOrder_Transition_SameStatusIsNoOp(t *testing.T) {
	order := sampleOrder(t)
	assert.NoError(t, order.Transition(OrderPending, "again"))
	assert.Len(t, order.StatusHistory, 1)
}

func TestOrder_Transition_AppendsHistoryAndStampsTimes(t *testing.T) {
	order := sampleOrder(t)

	assert.NoError(t, order.Transition(OrderProcessing, "confirmed"))
	assert.NoError(t, order.Transition(OrderShipped, "handed to courier"))
	assert.NoError(t, order.Transition(OrderDelivered, ""))

	assert.Len(t, order.StatusHistory, 4)
	assert.Equal(t, "handed to courier", order.StatusHistory[2].Note)
	assert.NotNil(t, order.DeliveredAt)

	cancelled := sampleOrder(t)
	assert.NoError(t, cancelled.Transition(OrderCancelled, ""))
	assert.NotNil(t, cancelled.CancelledAt)
}

func TestOrder_CanBeCancelled(t *testing.T) {
	order := sampleOrder(t)
	assert.True(t, order.CanBeCancelled())

	assert.NoError(t, order.Transition(OrderProcessing, ""))
	assert.True(t, order.CanBeCancelled())

	assert.NoError(t, order.Transition(OrderShipped, ""))
	assert.False(t, order.CanBeCancelled())
}

func TestOrder_PaymentMarkers(t *testing.T) {
	order := sampleOrder(t)

	order.MarkPaymentCompleted("pay-1", "sig-1")
	assert.Equal(t, PaymentCompleted, order.Payment.Status)
	assert.Equal(t, "pay-1", order.Payment.GatewayPaymentID)
	assert.NotNil(t, order.Payment.PaidAt)

	order.MarkPaymentRefunded()
	assert.Equal(t, PaymentRefunded, order.Payment.Status)
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus("lost"))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod("cod"))
	assert.True(t, ValidPaymentMethod("razorpay"))
	assert.False(t, ValidPaymentMethod("cheque"))
}
