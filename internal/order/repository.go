package order

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConstraint marks a write rejected by a storage constraint
	// (foreign key, uniqueness, check).
	ErrConstraint = errors.New("order storage constraint violated")
)

// Repository defines persistence operations for orders.
type Repository interface {
	CreateOrder(ctx context.Context, ord Order) (Order, error)
	CreateOrderItem(ctx context.Context, item Item) (Item, error)
	// ListByVendor returns the vendor's orders, newest first, without items.
	ListByVendor(ctx context.Context, vendorID int64) ([]Order, error)
	// ListItems returns the items of the given orders. An empty ids slice
	// yields an empty result without touching storage.
	ListItems(ctx context.Context, orderIDs []int64) ([]Item, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.RWMutex
	orders    []Order
	items     []Item
	nextOrder int64
	nextItem  int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextOrder: 1, nextItem: 1}
}

func (r *InMemoryRepository) CreateOrder(ctx context.Context, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord.ID = r.nextOrder
	r.nextOrder++
	ord.Items = nil
	r.orders = append(r.orders, ord)
	return ord, nil
}

func (r *InMemoryRepository) CreateOrderItem(ctx context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for _, o := range r.orders {
		if o.ID == item.OrderID {
			found = true
			break
		}
	}
	if !found {
		return Item{}, ErrConstraint
	}
	item.ID = r.nextItem
	r.nextItem++
	r.items = append(r.items, item)
	return item, nil
}

func (r *InMemoryRepository) ListByVendor(ctx context.Context, vendorID int64) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.VendorID == vendorID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) ListItems(ctx context.Context, orderIDs []int64) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[int64]struct{}, len(orderIDs))
	for _, id := range orderIDs {
		want[id] = struct{}{}
	}
	out := make([]Item, 0)
	for _, it := range r.items {
		if _, ok := want[it.OrderID]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}
