package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusAccepted   Status = "accepted"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
)

// NormalizeStatus lower-cases backend status strings.
func NormalizeStatus(s string) Status {
	return Status(strings.ToLower(strings.TrimSpace(s)))
}

type Delivery struct {
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Village        string          `json:"village"`
	Phone          string          `json:"phone"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
}

type OrderItem struct {
	OrderItemID     int64           `json:"order_item_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Status          Status          `json:"status"`
	SellerName      string          `json:"seller_name,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	ReturnRequested bool            `json:"return_requested"`
}

// Returnable reports whether a return may be requested for the item.
func (i OrderItem) Returnable() bool {
	return i.Status == StatusDelivered && !i.ReturnRequested
}

type Order struct {
	OrderID       int64           `json:"order_id"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	CreatedAt     string          `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	TrackingID    string          `json:"tracking_id"`
	Delivery      Delivery        `json:"delivery"`
	Items         []OrderItem     `json:"items"`
}

type ReturnRequest struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	OrderItemID   int64           `json:"order_item_id"`
	ProductID     int64           `json:"product_id"`
	Reason        string          `json:"reason"`
	Comments      string          `json:"comments"`
	Status        Status          `json:"status"`
	CreatedAt     string          `json:"created_at"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	SellerName    string          `json:"seller_name,omitempty"`
	TrackingID    string          `json:"tracking_id"`
	PaymentMethod string          `json:"payment_method"`
	Delivery      Delivery        `json:"delivery"`
}

type ReturnInput struct {
	UserID      int64
	OrderItemID int64
	Reason      string
	Comments    string
}
