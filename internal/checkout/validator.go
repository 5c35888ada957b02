package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/wichananm65/supply-market-backend/internal/cart"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
)

// Line is a cart entry resolved against the catalog snapshot.
type Line struct {
	Product      catalog.Product `json:"product"`
	Quantity     int             `json:"quantity"`
	BelowMinimum bool            `json:"belowMinimum"`
	ExceedsStock bool            `json:"exceedsStock"`
	Unavailable  bool            `json:"unavailable"`
}

// Reason returns the line's validation failure, or "" when it is valid.
// Unavailable wins over the other two.
func (l Line) Reason() Reason {
	switch {
	case l.Unavailable:
		return ReasonUnavailable
	case l.ExceedsStock:
		return ReasonExceedsStock
	case l.BelowMinimum:
		return ReasonBelowMinimum
	}
	return ""
}

func (l Line) Total() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Report is the outcome of validating a cart. Validation never fails; it
// describes what it found.
type Report struct {
	Lines []Line `json:"lines"`
	// Dropped lists cart products missing from the snapshot. They cannot be
	// validated or ordered and take no further part in checkout.
	Dropped []int64 `json:"dropped"`
}

// Validate resolves every cart entry, in cart order, against snap.
func Validate(c *cart.Cart, snap catalog.Snapshot) Report {
	r := Report{Lines: make([]Line, 0, c.Len()), Dropped: []int64{}}
	for _, e := range c.Entries() {
		p, ok := snap.Lookup(e.ProductID)
		if !ok {
			r.Dropped = append(r.Dropped, e.ProductID)
			continue
		}
		r.Lines = append(r.Lines, Line{
			Product:      p,
			Quantity:     e.Quantity,
			BelowMinimum: e.Quantity < p.MinOrderQuantity,
			ExceedsStock: e.Quantity > p.StockQuantity,
			Unavailable:  !p.Orderable(),
		})
	}
	return r
}

// Issues lists the invalid lines in cart order.
func (r Report) Issues() []Issue {
	out := make([]Issue, 0)
	for _, l := range r.Lines {
		reason := l.Reason()
		if reason == "" {
			continue
		}
		out = append(out, Issue{
			ProductID:        l.Product.ID,
			Reason:           reason,
			Quantity:         l.Quantity,
			MinOrderQuantity: l.Product.MinOrderQuantity,
			StockQuantity:    l.Product.StockQuantity,
		})
	}
	return out
}

// Eligible reports whether no resolved line breaks a product constraint.
// An empty report is eligible; checkout still refuses it as ReasonEmptyCart.
func (r Report) Eligible() bool {
	for _, l := range r.Lines {
		if l.Reason() != "" {
			return false
		}
	}
	return true
}

// Err converts the report into the error checkout refuses with, or nil.
func (r Report) Err() error {
	if len(r.Lines) == 0 {
		return &ValidationError{Reason: ReasonEmptyCart}
	}
	issues := r.Issues()
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Reason: issues[0].Reason, Issues: issues}
}

// IsCheckoutEligible validates c against snap.
func IsCheckoutEligible(c *cart.Cart, snap catalog.Snapshot) bool {
	return Validate(c, snap).Eligible()
}
