package cart

import (
	"context"
	"errors"
)

var (
	ErrInvalidProduct = errors.New("invalid product id")
	ErrInvalidVendor  = errors.New("invalid vendor id")
)

// Service loads a vendor's cart, applies one mutation and saves it back.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, vendorID int64) (*Cart, error) {
	if vendorID <= 0 {
		return nil, ErrInvalidVendor
	}
	return s.repo.Load(ctx, vendorID)
}

func (s *Service) Add(ctx context.Context, vendorID, productID int64) (*Cart, error) {
	return s.mutate(ctx, vendorID, productID, func(c *Cart) { c.Add(productID) })
}

func (s *Service) SetQuantity(ctx context.Context, vendorID, productID int64, qty int) (*Cart, error) {
	return s.mutate(ctx, vendorID, productID, func(c *Cart) { c.SetQuantity(productID, qty) })
}

func (s *Service) Remove(ctx context.Context, vendorID, productID int64) (*Cart, error) {
	return s.mutate(ctx, vendorID, productID, func(c *Cart) { c.Remove(productID) })
}

// Save replaces the stored cart, e.g. after a checkout cleared it.
func (s *Service) Save(ctx context.Context, vendorID int64, c *Cart) error {
	if vendorID <= 0 {
		return ErrInvalidVendor
	}
	return s.repo.Save(ctx, vendorID, c)
}

func (s *Service) Clear(ctx context.Context, vendorID int64) error {
	if vendorID <= 0 {
		return ErrInvalidVendor
	}
	return s.repo.Delete(ctx, vendorID)
}

func (s *Service) mutate(ctx context.Context, vendorID, productID int64, apply func(*Cart)) (*Cart, error) {
	if vendorID <= 0 {
		return nil, ErrInvalidVendor
	}
	if productID <= 0 {
		return nil, ErrInvalidProduct
	}
	c, err := s.repo.Load(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	apply(c)
	if err := s.repo.Save(ctx, vendorID, c); err != nil {
		return nil, err
	}
	return c, nil
}
