package cart

import (
	"encoding/json"
	"fmt"
)

// Entry is one product line of a cart. Quantity is always at least 1; a
// line whose quantity would drop to zero is removed instead.
type Entry struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Cart maps products to desired quantities and remembers the order in which
// products were first added. It is not safe for concurrent use; a cart has
// a single writer.
type Cart struct {
	qty   map[int64]int
	order []int64
}

func New() *Cart {
	return &Cart{qty: make(map[int64]int)}
}

// Add increments the quantity of productID by one, creating the line at 1.
func (c *Cart) Add(productID int64) {
	c.SetQuantity(productID, c.Quantity(productID)+1)
}

// SetQuantity sets the quantity exactly. qty <= 0 removes the line. No
// clamping against stock happens here.
func (c *Cart) SetQuantity(productID int64, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	if c.qty == nil {
		c.qty = make(map[int64]int)
	}
	if _, ok := c.qty[productID]; !ok {
		c.order = append(c.order, productID)
	}
	c.qty[productID] = qty
}

func (c *Cart) Remove(productID int64) {
	if _, ok := c.qty[productID]; !ok {
		return
	}
	delete(c.qty, productID)
	for i, id := range c.order {
		if id == productID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) Clear() {
	c.qty = make(map[int64]int)
	c.order = nil
}

// Quantity returns 0 for products not in the cart.
func (c *Cart) Quantity(productID int64) int {
	return c.qty[productID]
}

// Len is the number of distinct products.
func (c *Cart) Len() int { return len(c.order) }

func (c *Cart) IsEmpty() bool { return len(c.order) == 0 }

// Units is the total number of units across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, q := range c.qty {
		n += q
	}
	return n
}

// Entries returns the lines in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Entry{ProductID: id, Quantity: c.qty[id]})
	}
	return out
}

// ProductIDs returns the product ids in insertion order.
func (c *Cart) ProductIDs() []int64 {
	out := make([]int64, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Cart) Clone() *Cart {
	out := New()
	for _, e := range c.Entries() {
		out.SetQuantity(e.ProductID, e.Quantity)
	}
	return out
}

type document struct {
	Entries []Entry `json:"entries"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{Entries: c.Entries()})
}

// UnmarshalJSON restores a cart, keeping entry order. Lines with a
// non-positive quantity are dropped; a repeated product keeps its first
// position and its last quantity.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decode cart: %w", err)
	}
	c.Clear()
	for _, e := range doc.Entries {
		c.SetQuantity(e.ProductID, e.Quantity)
	}
	return nil
}
