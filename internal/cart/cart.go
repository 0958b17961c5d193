package cart

import (
	"time"

	"mini-eats/internal/model"

	"github.com/google/uuid"
)

// Line is one product and its quantity within a cart.
type Line struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

// LineTotal returns the product price multiplied by the quantity.
func (l Line) LineTotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Cart is a single-restaurant collection of lines. The zero value is an
// empty cart bound to no restaurant.
//
// Adding a product from a restaurant other than the one the cart holds is
// rejected with model.ErrCrossRestaurantConflict; callers that want to
// switch restaurants clear the cart first.
type Cart struct {
	RestaurantID uuid.UUID `json:"restaurantId"`
	Lines        []Line    `json:"lines"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Add puts one unit of product into the cart.
func (c *Cart) Add(product model.Product) error {
	if !product.IsAvailable {
		return model.ErrProductUnavailable
	}

	if !c.IsEmpty() && c.RestaurantID != product.RestaurantID {
		return model.ErrCrossRestaurantConflict
	}

	c.RestaurantID = product.RestaurantID
	c.UpdatedAt = time.Now().UTC()

	if i := c.indexOf(product.ID); i >= 0 {
		c.Lines[i].Quantity++
		return nil
	}

	c.Lines = append(c.Lines, Line{Product: product, Quantity: 1})
	return nil
}

// Remove takes one unit of the product out of the cart, deleting the line
// when its quantity reaches zero.
func (c *Cart) Remove(productID uuid.UUID) error {
	i := c.indexOf(productID)
	if i < 0 {
		return model.ErrLineNotFound
	}

	c.UpdatedAt = time.Now().UTC()
	c.Lines[i].Quantity--
	if c.Lines[i].Quantity <= 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	}

	if c.IsEmpty() {
		c.RestaurantID = uuid.Nil
		c.Lines = nil
	}
	return nil
}

// QuantityOf returns the quantity held for productID, or 0 if absent.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Lines[i].Quantity
	}
	return 0
}

// Subtotal sums price times quantity over the current lines.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// Clear empties the cart and releases its restaurant binding.
func (c *Cart) Clear() {
	c.RestaurantID = uuid.Nil
	c.Lines = nil
	c.UpdatedAt = time.Now().UTC()
}

// Clone returns a copy that shares no line storage with c.
func (c Cart) Clone() Cart {
	out := c
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	return out
}

// OrderItems converts the lines into order items with prices frozen.
func (c *Cart) OrderItems(orderID uuid.UUID) []model.OrderItem {
	items := make([]model.OrderItem, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
		}
	}
	return items
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
