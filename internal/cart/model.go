package cart

import (
	"fitfuzz-storefront/internal/identity"

	"github.com/shopspring/decimal"
)

// LineItem is one product/variant line in a cart. Its identity is Key();
// two lines never share a key.
type LineItem struct {
	ID        string           `json:"id"`
	ProductID int64            `json:"product_id"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	Price     decimal.Decimal  `json:"price"`
	SellerID  int64            `json:"seller_id"`
	Variant   identity.Variant `json:"variant"`
	Quantity  int              `json:"quantity"`
}

func (i LineItem) Key() string {
	return identity.Key(i.ProductID, i.Variant)
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Navigable reports whether the line resolves to a real catalog product.
func (i LineItem) Navigable() bool {
	return i.ProductID > 0
}

// Candidate is what a product page submits to Add. ProductID may be left
// zero, in which case it is recovered from ID.
type Candidate struct {
	ID        string
	ProductID int64
	Name      string
	ImageURL  string
	Price     decimal.Decimal
	SellerID  int64
	Variant   identity.Variant
	Quantity  int
}
