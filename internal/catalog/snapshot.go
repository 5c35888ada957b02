package catalog

// Snapshot is an immutable view of the catalog taken at one point in time.
// Validation and pricing read from a snapshot so that a price change after
// it was taken can never leak into an order being placed.
type Snapshot struct {
	products map[int64]Product
}

// NewSnapshot indexes products by id. Later duplicates replace earlier ones.
func NewSnapshot(products []Product) Snapshot {
	m := make(map[int64]Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return Snapshot{products: m}
}

// Lookup returns the product with the given id.
func (s Snapshot) Lookup(id int64) (Product, bool) {
	p, ok := s.products[id]
	return p, ok
}

func (s Snapshot) Len() int { return len(s.products) }
