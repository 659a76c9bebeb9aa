package cart

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Cart belongs either to a signed-in user or to an anonymous session, never
// both.
type Cart struct {
	ID            string          `json:"id" db:"cart_id"`
	UserID        *string         `json:"userId,omitempty" db:"user_id"`
	SessionCartID *string         `json:"sessionCartId,omitempty" db:"session_cart_id"`
	Items         Items           `json:"items" db:"items"`
	ItemsPrice    decimal.Decimal `json:"itemsPrice" db:"items_price"`
	ShippingPrice decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"taxPrice" db:"tax_price"`
	TotalPrice    decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Qty       int             `json:"qty"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
}

type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		it = Items{}
	}
	return json.Marshal(it)
}

func (it *Items) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, it)
	case string:
		return json.Unmarshal([]byte(v), it)
	case nil:
		*it = Items{}
		return nil
	}
	return errors.New("cart items: unsupported source type")
}

func (it Items) index(productID string) int {
	for i := range it {
		if it[i].ProductID == productID {
			return i
		}
	}
	return -1
}

type ItemNew struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"omitempty,gte=1,lte=99"`
}

// Owner selects whose cart a request works on.
type Owner struct {
	UserID    string
	SessionID string
}

// Pricing holds the rules the cart aggregates are computed with.
type Pricing struct {
	TaxRate               decimal.Decimal
	ShippingPrice         decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		TaxRate:               decimal.RequireFromString("0.15"),
		ShippingPrice:         decimal.NewFromInt(10),
		FreeShippingThreshold: decimal.NewFromInt(100),
	}
}

// Apply recomputes the aggregates of c from its items.
func (p Pricing) Apply(c *Cart) {
	items := decimal.Zero
	for _, it := range c.Items {
		items = items.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	items = items.Round(2)

	shipping := p.ShippingPrice
	if items.GreaterThan(p.FreeShippingThreshold) || len(c.Items) == 0 {
		shipping = decimal.Zero
	}

	tax := items.Mul(p.TaxRate).Round(2)

	c.ItemsPrice = items
	c.ShippingPrice = shipping.Round(2)
	c.TaxPrice = tax
	c.TotalPrice = items.Add(c.ShippingPrice).Add(tax)
}

// Add puts qty units of it into the cart, merging with an existing line.
func (c *Cart) Add(it Item) {
	if i := c.Items.index(it.ProductID); i >= 0 {
		c.Items[i].Qty += it.Qty
		return
	}
	c.Items = append(c.Items, it)
}

// Remove takes one unit of productID out of the cart and reports whether the
// product was in it. The line goes away with its last unit.
func (c *Cart) Remove(productID string) bool {
	i := c.Items.index(productID)
	if i < 0 {
		return false
	}

	if c.Items[i].Qty > 1 {
		c.Items[i].Qty--
		return true
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}
