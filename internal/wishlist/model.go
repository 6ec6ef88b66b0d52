package wishlist

import "github.com/shopspring/decimal"

// Item is keyed by ProductID alone; a wishlist holds each product once.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}
