package cart

import (
	"context"
	"sync"
)

// Repository persists each vendor's cart between requests. Load returns an
// empty cart when the vendor has none; saving an empty cart deletes it.
type Repository interface {
	Load(ctx context.Context, vendorID int64) (*Cart, error)
	Save(ctx context.Context, vendorID int64, c *Cart) error
	Delete(ctx context.Context, vendorID int64) error
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int64]*Cart
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int64]*Cart)}
}

func (r *InMemoryRepository) Load(ctx context.Context, vendorID int64) (*Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carts[vendorID]; ok {
		return c.Clone(), nil
	}
	return New(), nil
}

func (r *InMemoryRepository) Save(ctx context.Context, vendorID int64, c *Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.IsEmpty() {
		delete(r.carts, vendorID)
		return nil
	}
	r.carts[vendorID] = c.Clone()
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, vendorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, vendorID)
	return nil
}
