package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wichananm65/supply-market-backend/internal/order"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("checkout validation failed")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("checkout persistence failed")
)

// Reason names why a cart was refused before any order was written.
type Reason string

const (
	ReasonEmptyCart    Reason = "empty_cart"
	ReasonBelowMinimum Reason = "below_minimum"
	ReasonExceedsStock Reason = "exceeds_stock"
	// ReasonUnavailable means the product's minimum order exceeds its stock,
	// so no quantity can satisfy both.
	ReasonUnavailable Reason = "unavailable"
)

// Issue describes one cart line that failed validation.
type Issue struct {
	ProductID        int64  `json:"productId"`
	Reason           Reason `json:"reason"`
	Quantity         int    `json:"quantity"`
	MinOrderQuantity int    `json:"minOrderQuantity"`
	StockQuantity    int    `json:"stockQuantity"`
}

// ValidationError is returned when checkout is refused. No storage call has
// been made when it is returned. Reason is the reason of the first issue in
// cart order, or ReasonEmptyCart.
type ValidationError struct {
	Reason Reason
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonEmptyCart {
		return "checkout refused: cart is empty"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("product %d: %s", is.ProductID, is.Reason))
	}
	return "checkout refused: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FailureKind names the storage step that failed during checkout.
type FailureKind string

const (
	OrderCreateFailed FailureKind = "order_create_failed"
	ItemCreateFailed  FailureKind = "item_create_failed"
)

// PersistenceError aborts a checkout. Orders and items written before the
// failure stay persisted and are listed in Placed; nothing is rolled back
// and the cart is left as it was.
type PersistenceError struct {
	Kind       FailureKind
	CheckoutID string
	SupplierID int64
	// ProductID is set for ItemCreateFailed.
	ProductID int64
	Placed    []order.Order
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Kind == ItemCreateFailed {
		return fmt.Sprintf("checkout %s: %s for supplier %d product %d: %v", e.CheckoutID, e.Kind, e.SupplierID, e.ProductID, e.Err)
	}
	return fmt.Sprintf("checkout %s: %s for supplier %d: %v", e.CheckoutID, e.Kind, e.SupplierID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
