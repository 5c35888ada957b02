package catalog

import (
	"context"
	"sort"
	"sync"
)

// Repository is the read side of the catalog storage.
type Repository interface {
	// FetchCatalog returns every product with its supplier summary.
	FetchCatalog(ctx context.Context) ([]Product, error)
	// FetchProducts returns the products whose id is in ids. Unknown ids are
	// skipped, an empty ids slice yields an empty result.
	FetchProducts(ctx context.Context, ids []int64) ([]Product, error)
	FetchSuppliers(ctx context.Context) ([]Supplier, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu        sync.RWMutex
	products  map[int64]Product
	suppliers map[int64]Supplier
}

func NewInMemoryRepository(suppliers []Supplier, products []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		products:  make(map[int64]Product, len(products)),
		suppliers: make(map[int64]Supplier, len(suppliers)),
	}
	for _, s := range suppliers {
		r.suppliers[s.ID] = s
	}
	for _, p := range products {
		r.Upsert(p)
	}
	return r
}

// Upsert stores p, refreshing its supplier summary when the supplier is known.
func (r *InMemoryRepository) Upsert(p Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.suppliers[p.SupplierID]; ok {
		p.Supplier = s.Summary()
	}
	r.products[p.ID] = p
}

func (r *InMemoryRepository) FetchCatalog(ctx context.Context) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) FetchProducts(ctx context.Context, ids []int64) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) FetchSuppliers(ctx context.Context) ([]Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
