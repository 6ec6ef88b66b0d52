package location

import "github.com/shopspring/decimal"

// Location is a saved delivery address. DeliveryCharge always comes from
// the village record, never from user input.
type Location struct {
	ID             int64           `json:"id"`
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Village        string          `json:"village"`
	Phone          string          `json:"phone"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
}

type Village struct {
	Name   string          `json:"village"`
	Charge decimal.Decimal `json:"charge"`
}

type SaveInput struct {
	UserID   int64
	Province string
	District string
	Village  string
	Phone    string
}
