package order

import "context"

// Service provides the read side of orders for the vendor dashboard.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// History returns the vendor's orders, newest first, each with its items.
func (s *Service) History(ctx context.Context, vendorID int64) ([]Order, error) {
	if vendorID <= 0 {
		return nil, ErrNotFound
	}
	orders, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := s.repo.ListItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]Item, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}
