package catalog

import "context"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.repo.FetchCatalog(ctx)
}

func (s *Service) Suppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.FetchSuppliers(ctx)
}

// SnapshotFor captures the current state of the given products. Ids that no
// longer exist are simply absent from the snapshot.
func (s *Service) SnapshotFor(ctx context.Context, ids []int64) (Snapshot, error) {
	products, err := s.repo.FetchProducts(ctx, ids)
	if err != nil {
		return Snapshot{}, err
	}
	return NewSnapshot(products), nil
}
