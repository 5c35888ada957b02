package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrInvalidItem   = errors.New("invalid order item")
	ErrInvalidStatus = errors.New("invalid order status")
)

// DeliveryWindow is added to the creation time to obtain the expected
// delivery time of a new order.
const DeliveryWindow = 4 * time.Hour

// Status is the fulfilment state of an order. Orders are created pending;
// every later transition belongs to the supplier workflow.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

var next = map[Status]Status{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusPreparing,
	StatusPreparing:  StatusDispatched,
	StatusDispatched: StatusDelivered,
}

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusDispatched, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the supplier workflow may move an order
// from s to to. Cancellation is allowed from every non-terminal state.
func (s Status) CanTransitionTo(to Status) bool {
	if s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return next[s] == to
}

// Order is one supplier's share of a checkout. TotalAmount is the sum of its
// items and never includes a delivery fee.
type Order struct {
	ID               int64           `json:"id"`
	VendorID         int64           `json:"vendorId"`
	SupplierID       int64           `json:"supplierId"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           Status          `json:"status"`
	DeliveryAddress  string          `json:"deliveryAddress"`
	ExpectedDelivery time.Time       `json:"expectedDelivery"`
	CreatedAt        time.Time       `json:"createdAt"`
	Items            []Item          `json:"items,omitempty"`
}

// NewOrder builds a pending order created at now.
func NewOrder(vendorID, supplierID int64, total decimal.Decimal, deliveryAddress string, now time.Time) (Order, error) {
	switch {
	case vendorID <= 0:
		return Order{}, fmt.Errorf("%w: vendor id must be positive", ErrInvalidOrder)
	case supplierID <= 0:
		return Order{}, fmt.Errorf("%w: supplier id must be positive", ErrInvalidOrder)
	case !total.IsPositive():
		return Order{}, fmt.Errorf("%w: total must be positive", ErrInvalidOrder)
	case deliveryAddress == "":
		return Order{}, fmt.Errorf("%w: delivery address required", ErrInvalidOrder)
	}
	now = now.UTC()
	return Order{
		VendorID:         vendorID,
		SupplierID:       supplierID,
		TotalAmount:      total,
		Status:           StatusPending,
		DeliveryAddress:  deliveryAddress,
		ExpectedDelivery: now.Add(DeliveryWindow),
		CreatedAt:        now,
	}, nil
}

// Item is one product line of an order. UnitPrice is the price captured when
// the order was placed and is never recomputed.
type Item struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"orderId"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func NewItem(orderID, productID int64, quantity int, unitPrice decimal.Decimal) (Item, error) {
	switch {
	case orderID <= 0:
		return Item{}, fmt.Errorf("%w: order id must be positive", ErrInvalidItem)
	case productID <= 0:
		return Item{}, fmt.Errorf("%w: product id must be positive", ErrInvalidItem)
	case quantity < 1:
		return Item{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidItem)
	case !unitPrice.IsPositive():
		return Item{}, fmt.Errorf("%w: unit price must be positive", ErrInvalidItem)
	}
	return Item{
		OrderID:    orderID,
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}
