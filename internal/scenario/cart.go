package scenario

import "sync"

// CartItem is one product line picked from the price list.
type CartItem struct {
	Name          string  `json:"name"`
	Quantity      int     `json:"quantity"`
	UnitCost      float64 `json:"unit_cost"`
	UnitBasePrice float64 `json:"unit_base_price"`
}

// CostTotal is the material cost for the line.
func (i CartItem) CostTotal() float64 { return i.UnitCost * float64(i.Quantity) }

// BaseTotal is the catalog price for the line.
func (i CartItem) BaseTotal() float64 { return i.UnitBasePrice * float64(i.Quantity) }

// Cart is the mutable item accumulation for one calculator session.
// The caller owns it; the pipeline never stores carts.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
}

func NewCart() *Cart { return &Cart{} }

// Add appends a line. Quantities below one are clamped to one.
func (c *Cart) Add(item CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the line count.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// MaterialCost sums the cost side of every line.
func (c *Cart) MaterialCost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, i := range c.items {
		sum += i.CostTotal()
	}
	return sum
}

// BasePriceTotal sums the catalog price side of every line.
func (c *Cart) BasePriceTotal() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, i := range c.items {
		sum += i.BaseTotal()
	}
	return sum
}
