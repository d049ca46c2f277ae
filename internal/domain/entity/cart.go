package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ID        string    `bson:"_id" json:"id"`
	ProductID string    `bson:"product_id" json:"productId"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Price     float64   `bson:"price" json:"price"`
	AddedAt   time.Time `bson:"added_at" json:"addedAt"`
}

// Cart is the one-per-user line-item aggregate. TotalItems and TotalPrice are
// derived; every mutator recomputes them before the cart is persisted.
type Cart struct {
	ID         string     `bson:"_id,omitempty" json:"id"`
	UserID     string     `bson:"user_id" json:"userId"`
	Items      []CartItem `bson:"items" json:"items"`
	TotalItems int        `bson:"total_items" json:"totalItems"`
	TotalPrice float64    `bson:"total_price" json:"totalPrice"`
	ExpiresAt  time.Time  `bson:"expires_at" json:"-"`
	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
}

func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) FindItem(itemID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) FindItemByProduct(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// AddItem merges into an existing line for the product (summing quantity and
// refreshing the captured price) or appends a new line. Returns the resulting
// line quantity so the caller can re-check stock on merges.
func (c *Cart) AddItem(productID string, quantity int, price float64) int {
	if item := c.FindItemByProduct(productID); item != nil {
		item.Quantity += quantity
		item.Price = price
		c.recalculate()
		return item.Quantity
	}
	c.Items = append(c.Items, CartItem{
		ID:        primitive.NewObjectID().Hex(),
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
		AddedAt:   time.Now().UTC(),
	})
	c.recalculate()
	return quantity
}

// SetItemQuantity treats a quantity of zero or below as a removal.
func (c *Cart) SetItemQuantity(itemID string, quantity int, price float64) bool {
	item := c.FindItem(itemID)
	if item == nil {
		return false
	}
	if quantity <= 0 {
		c.RemoveItem(itemID)
		return true
	}
	item.Quantity = quantity
	item.Price = price
	c.recalculate()
	return true
}

// RemoveItem is idempotent: removing an absent line is a no-op.
func (c *Cart) RemoveItem(itemID string) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.recalculate()
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.recalculate()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) recalculate() {
	var items int
	var price float64
	for _, it := range c.Items {
		items += it.Quantity
		price += it.Price * float64(it.Quantity)
	}
	c.TotalItems = items
	c.TotalPrice = price
	c.UpdatedAt = time.Now().UTC()
}
