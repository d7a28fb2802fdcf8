package domain

import "time"

type Cart struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Items      []CartItem `json:"items"`
}

// CartItem is a cart line joined with the live product row, so price and
// stock reflect the catalog at read time.
type CartItem struct {
	ID            string    `json:"id"`
	CartID        string    `json:"cartId"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductSlug   string    `json:"productSlug"`
	PriceCents    int64     `json:"priceCents"`
	StockQuantity int       `json:"stockQuantity"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LineTotalCents is the live price times quantity.
func (i CartItem) LineTotalCents() int64 {
	return i.PriceCents * int64(i.Quantity)
}

// Totals returns the number of units and the sum of line totals.
func (c Cart) Totals() (int, int64) {
	var count int
	var total int64
	for _, item := range c.Items {
		count += item.Quantity
		total += item.LineTotalCents()
	}
	return count, total
}
