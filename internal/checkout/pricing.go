package checkout

import "github.com/shopspring/decimal"

// Policy holds the delivery pricing rules.
type Policy struct {
	FreeDeliveryThreshold decimal.Decimal
	DeliveryFee           decimal.Decimal
}

func DefaultPolicy() Policy {
	return Policy{
		FreeDeliveryThreshold: decimal.NewFromInt(500),
		DeliveryFee:           decimal.NewFromInt(50),
	}
}

// Quote is the cart-level price shown to the vendor. It is never stored:
// persisted orders carry their group total only, without the delivery fee.
type Quote struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"deliveryFee"`
	Total                 decimal.Decimal `json:"total"`
	FreeDeliveryShortfall decimal.Decimal `json:"freeDeliveryShortfall"`
	Units                 int             `json:"units"`
}

// Quote prices the groups. The fee is waived iff the subtotal reaches the
// threshold.
func (p Policy) Quote(groups []Group) Quote {
	q := Quote{Subtotal: decimal.Zero, DeliveryFee: decimal.Zero, FreeDeliveryShortfall: decimal.Zero}
	for _, g := range groups {
		q.Subtotal = q.Subtotal.Add(g.Total)
		for _, it := range g.Items {
			q.Units += it.Quantity
		}
	}
	if q.Subtotal.LessThan(p.FreeDeliveryThreshold) {
		q.DeliveryFee = p.DeliveryFee
		q.FreeDeliveryShortfall = p.FreeDeliveryThreshold.Sub(q.Subtotal)
	}
	q.Total = q.Subtotal.Add(q.DeliveryFee)
	return q
}
