package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound covers both a missing order id and an order owned by
	// someone else; callers cannot tell the two apart.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidState is returned when the current status does not permit
	// the attempted transition.
	ErrInvalidState = errors.New("order status does not permit this operation")

	// ErrAlreadyVerified is returned when a pickup code resolves to an
	// order that was already completed.
	ErrAlreadyVerified = errors.New("order already verified")

	// ErrInvalidPickupCode is returned when no non-terminal order carries
	// the code.
	ErrInvalidPickupCode = errors.New("invalid pickup code")

	// ErrProductOffShelf is wrapped with the product name by the pricing
	// engine.
	ErrProductOffShelf = errors.New("product is off shelves")

	ErrShopClosed           = errors.New("shop is currently closed")
	ErrAddressRequired      = errors.New("address is required for delivery orders")
	ErrRejectReasonRequired = errors.New("reject reason is required")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
)

// BelowMinOrderError is returned when the goods subtotal does not reach the
// configured minimum order amount.
type BelowMinOrderError struct {
	Subtotal int64
	Minimum  int64
}

func (e *BelowMinOrderError) Error() string {
	return fmt.Sprintf("order subtotal %s below minimum %s", formatCents(e.Subtotal), formatCents(e.Minimum))
}
