package domain

import "time"

// ProductType is the storefront shelf a product is listed under.
type ProductType string

const (
	ProductTypeFreshCorn ProductType = "fresh-corn"
	ProductTypeBundles   ProductType = "bundles"
	ProductTypeSnacks    ProductType = "snacks"
	ProductTypeFarmGoods ProductType = "farm-goods"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeFreshCorn, ProductTypeBundles, ProductTypeSnacks, ProductTypeFarmGoods:
		return true
	}
	return false
}

type Product struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description,omitempty"`
	ProductType   ProductType `json:"productType"`
	PriceCents    int64       `json:"priceCents"`
	StockQuantity int         `json:"stockQuantity"`
	IsFeatured    bool        `json:"isFeatured"`
	IsBestseller  bool        `json:"isBestseller"`
	IsNew         bool        `json:"isNew"`
	FreeDelivery  bool        `json:"freeDelivery"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
