package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidSupplier = errors.New("invalid supplier")
)

// SupplierSummary holds the supplier fields embedded in every catalog row.
// They are display data only and never take part in validation.
type SupplierSummary struct {
	BusinessName string  `json:"businessName"`
	Rating       float64 `json:"rating"`
	Area         string  `json:"area"`
	KYCVerified  bool    `json:"kycVerified"`
}

// Product is a read-only catalog entry. Price is in currency units.
type Product struct {
	ID               int64           `json:"id"`
	SupplierID       int64           `json:"supplierId"`
	Name             string          `json:"name"`
	Category         string          `json:"category,omitempty"`
	Unit             string          `json:"unit"`
	Price            decimal.Decimal `json:"price"`
	StockQuantity    int             `json:"stockQuantity"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
	Supplier         SupplierSummary `json:"supplier"`
}

// NewProduct validates p and returns it unchanged when every field
// constraint holds.
func NewProduct(p Product) (Product, error) {
	switch {
	case p.ID <= 0:
		return Product{}, fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	case p.SupplierID <= 0:
		return Product{}, fmt.Errorf("%w: product %d: supplier id must be positive", ErrInvalidProduct, p.ID)
	case !p.Price.IsPositive():
		return Product{}, fmt.Errorf("%w: product %d: price must be positive", ErrInvalidProduct, p.ID)
	case p.StockQuantity < 0:
		return Product{}, fmt.Errorf("%w: product %d: stock must not be negative", ErrInvalidProduct, p.ID)
	case p.MinOrderQuantity < 1:
		return Product{}, fmt.Errorf("%w: product %d: minimum order must be at least 1", ErrInvalidProduct, p.ID)
	}
	return p, nil
}

// Orderable reports whether any quantity can satisfy both the minimum order
// and the available stock.
func (p Product) Orderable() bool {
	return p.MinOrderQuantity <= p.StockQuantity
}

// Supplier is a seller fulfilling orders for one or more products.
type Supplier struct {
	ID           int64   `json:"id"`
	BusinessName string  `json:"businessName"`
	OwnerName    string  `json:"ownerName,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Area         string  `json:"area"`
	KYCVerified  bool    `json:"kycVerified"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"totalReviews"`
}

// NewSupplier validates s.
func NewSupplier(s Supplier) (Supplier, error) {
	if s.ID <= 0 {
		return Supplier{}, fmt.Errorf("%w: id must be positive", ErrInvalidSupplier)
	}
	if s.BusinessName == "" {
		return Supplier{}, fmt.Errorf("%w: supplier %d: business name required", ErrInvalidSupplier, s.ID)
	}
	if s.Rating < 0 || s.Rating > 5 {
		return Supplier{}, fmt.Errorf("%w: supplier %d: rating out of range", ErrInvalidSupplier, s.ID)
	}
	if s.TotalReviews < 0 {
		return Supplier{}, fmt.Errorf("%w: supplier %d: review count must not be negative", ErrInvalidSupplier, s.ID)
	}
	return s, nil
}

// Summary returns the display fields copied onto catalog rows.
func (s Supplier) Summary() SupplierSummary {
	return SupplierSummary{
		BusinessName: s.BusinessName,
		Rating:       s.Rating,
		Area:         s.Area,
		KYCVerified:  s.KYCVerified,
	}
}
