// Package cart implements the point-of-sale order cart. A cart is a plain
// value type with pure transition functions so the rules can be tested
// without a running gateway; Service binds carts to kv sessions and the
// upstream store API.
package cart

import (
	"errors"
	"fmt"

	"storefront-gateway/internal/models"
)

var (
	// ErrStockExceeded rejects a mutation that would push a line past its
	// stock ceiling. The ceiling is a courtesy check against the stock seen
	// at catalog fetch time; the upstream performs the authoritative check
	// at submission.
	ErrStockExceeded = errors.New("requested quantity exceeds available stock")

	// ErrLineNotFound is returned when a mutation targets an absent product.
	ErrLineNotFound = errors.New("product is not in the cart")
)

// Line is one product in the cart.
type Line struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"maxQuantity"`
}

// Subtotal is the line's contribution to the cart total.
func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is an ordered collection of lines, one per distinct product.
type Cart struct {
	ID    string `json:"id"`
	Lines []Line `json:"lines"`
}

// New creates an empty cart.
func New(id string) *Cart {
	return &Cart{ID: id}
}

func (c *Cart) find(productID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// AddLine adds one unit of the product. An existing line is incremented up to
// its stock ceiling; a new line starts at quantity 1 with the ceiling taken
// from the product's current stock.
func (c *Cart) AddLine(p models.Product) error {
	if line := c.find(p.ID); line != nil {
		if line.Quantity >= line.MaxQuantity {
			return fmt.Errorf("%w: only %d units of %q available", ErrStockExceeded, line.MaxQuantity, line.ProductName)
		}
		line.Quantity++
		return nil
	}

	if p.Stock < 1 {
		return fmt.Errorf("%w: %q is out of stock", ErrStockExceeded, p.Name)
	}
	c.Lines = append(c.Lines, Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    1,
		MaxQuantity: p.Stock,
	})
	return nil
}

// SetQuantity sets a line's quantity. A quantity of zero or less removes the
// line; anything above the ceiling is rejected with the cart unchanged.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		c.RemoveLine(productID)
		return nil
	}

	line := c.find(productID)
	if line == nil {
		return ErrLineNotFound
	}
	if quantity > line.MaxQuantity {
		return fmt.Errorf("%w: only %d units of %q available", ErrStockExceeded, line.MaxQuantity, line.ProductName)
	}
	line.Quantity = quantity
	return nil
}

// RemoveLine removes a product's line. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// Total is the sum of unit price times quantity over all lines.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

// Items converts the cart lines into upstream order items.
func (c *Cart) Items() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			Price:       line.UnitPrice,
		})
	}
	return items
}
