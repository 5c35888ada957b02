package checkout

import (
	"github.com/shopspring/decimal"
	"github.com/wichananm65/supply-market-backend/internal/catalog"
)

type GroupItem struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (it GroupItem) Total() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Group is the part of a cart fulfilled by one supplier. It becomes exactly
// one order at checkout.
type Group struct {
	SupplierID int64                   `json:"supplierId"`
	Supplier   catalog.SupplierSummary `json:"supplier"`
	Items      []GroupItem             `json:"items"`
	Total      decimal.Decimal         `json:"total"`
}

// Split partitions the report's lines by supplier. Groups appear in the
// order their supplier is first seen in the cart, and items keep cart order
// within a group, so the same cart always splits the same way.
func Split(r Report) []Group {
	groups := make([]Group, 0)
	index := make(map[int64]int)
	for _, l := range r.Lines {
		i, ok := index[l.Product.SupplierID]
		if !ok {
			i = len(groups)
			index[l.Product.SupplierID] = i
			groups = append(groups, Group{
				SupplierID: l.Product.SupplierID,
				Supplier:   l.Product.Supplier,
				Total:      decimal.Zero,
			})
		}
		it := GroupItem{Product: l.Product, Quantity: l.Quantity}
		groups[i].Items = append(groups[i].Items, it)
		groups[i].Total = groups[i].Total.Add(it.Total())
	}
	return groups
}
