package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrForbidden          = errors.New("operation not permitted")

	ErrProductInactive = errors.New("product is not available")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
	ErrCategoryInUse   = errors.New("category has products or subcategories")

	ErrEmptyCart           = errors.New("cart is empty")
	ErrNoShippingAddress   = errors.New("no shipping address selected")
	ErrOrderNotCancellable = errors.New("order can no longer be cancelled")

	ErrPaymentSetup        = errors.New("failed to initialize payment")
	ErrPaymentVerification = errors.New("payment verification failed")
)

// InsufficientStockError reports which product blocked a cart or checkout
// mutation and how many units remain.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: only %d available", e.ProductName, e.Available)
}
