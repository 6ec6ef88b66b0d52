package backend

import (
	"fitfuzz-storefront/internal/identity"

	"github.com/shopspring/decimal"
)

// Amount is a decimal sent as a bare JSON number.
type Amount decimal.Decimal

func NewAmount(d decimal.Decimal) Amount {
	return Amount(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

// Option is a color or size master record.
type Option struct {
	ID   identity.FlexID `json:"id"`
	Name string          `json:"name"`
}

// productOption is one entry of a product's color or size list, which
// names its columns either generically or per kind.
type productOption struct {
	ID        identity.FlexID `json:"id"`
	ColorID   identity.FlexID `json:"color_id"`
	SizeID    identity.FlexID `json:"size_id"`
	Name      string          `json:"name"`
	ColorName string          `json:"color_name"`
	SizeName  string          `json:"size_name"`
}

func (p productOption) option() Option {
	o := Option{ID: p.ID, Name: p.Name}
	for _, id := range []identity.FlexID{p.ColorID, p.SizeID} {
		if !o.ID.Valid {
			o.ID = id
		}
	}
	for _, name := range []string{p.ColorName, p.SizeName} {
		if o.Name == "" {
			o.Name = name
		}
	}
	return o
}

type Location struct {
	ID             identity.FlexID `json:"id"`
	UserID         identity.FlexID `json:"user_id,omitempty"`
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Village        string          `json:"village"`
	Phone          string          `json:"phone"`
	DeliveryCharge Amount          `json:"delivery_charge"`
}

type Village struct {
	Village string `json:"village"`
	Charge  Amount `json:"charge"`
}

type SaveLocationRequest struct {
	UserID   int64  `json:"user_id"`
	Province string `json:"province"`
	District string `json:"district"`
	Village  string `json:"village"`
	Charge   Amount `json:"charge"`
	Phone    string `json:"phone"`
}

type CheckoutItem struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     Amount `json:"price"`
	SellerID  int64  `json:"seller_id"`
	ColorID   *int64 `json:"color_id"`
	SizeID    *int64 `json:"size_id"`
}

type CheckoutRequest struct {
	UserID        int64          `json:"user_id"`
	LocationID    int64          `json:"location_id"`
	Items         []CheckoutItem `json:"items"`
	Total         Amount         `json:"total"`
	PaymentMethod string         `json:"payment_method"`
}

type CheckoutResponse struct {
	Success    bool   `json:"success"`
	TrackingID string `json:"tracking_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type User struct {
	ID    identity.FlexID `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  string          `json:"role"`
	Token string          `json:"token"`
}

type Seller struct {
	SellerID  identity.FlexID `json:"seller_id"`
	StoreName string          `json:"storeName"`
	Email     string          `json:"email"`
	Token     string          `json:"token"`
}

type Delivery struct {
	Province       string `json:"province"`
	District       string `json:"district"`
	Village        string `json:"village"`
	Phone          string `json:"phone"`
	DeliveryCharge Amount `json:"delivery_charge"`
}

type OrderItem struct {
	OrderItemID identity.FlexID `json:"order_item_id"`
	ProductID   identity.FlexID `json:"product_id"`
	Quantity    int             `json:"quantity"`
	Price       Amount          `json:"price"`
	Status      string          `json:"status"`
	SellerName  string          `json:"seller_name,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type Order struct {
	OrderID       identity.FlexID `json:"order_id"`
	Total         Amount          `json:"total"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
	PaymentMethod string          `json:"payment_method"`
	TrackingID    string          `json:"tracking_id"`
	Delivery      Delivery        `json:"delivery"`
	Items         []OrderItem     `json:"items"`
}

type ReturnItem struct {
	ID            identity.FlexID `json:"id"`
	OrderItemID   identity.FlexID `json:"order_item_id"`
	OrderID       identity.FlexID `json:"order_id"`
	ProductID     identity.FlexID `json:"product_id"`
	Reason        string          `json:"reason"`
	Comments      string          `json:"comments"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
	Price         Amount          `json:"price"`
	Quantity      int             `json:"quantity"`
	ImageURL      string          `json:"image_url,omitempty"`
	SellerName    string          `json:"seller_name,omitempty"`
	TrackingID    string          `json:"tracking_id"`
	PaymentMethod string          `json:"payment_method"`
	Delivery      Delivery        `json:"delivery"`
}

type MarkDeliveredRequest struct {
	OrderID   int64 `json:"order_id"`
	ProductID int64 `json:"product_id"`
}

type ReturnProductRequest struct {
	OrderItemID int64  `json:"order_item_id"`
	UserID      int64  `json:"user_id"`
	Reason      string `json:"reason"`
	Comments    string `json:"comments"`
}

type Feedback struct {
	ID        identity.FlexID `json:"id"`
	UserID    identity.FlexID `json:"user_id"`
	Rating    int             `json:"rating"`
	Comment   string          `json:"comment"`
	Images    []string        `json:"images,omitempty"`
	CreatedAt string          `json:"created_at"`
	UserName  string          `json:"user_name,omitempty"`
}

type ProductFeedback struct {
	Feedbacks     []Feedback `json:"feedbacks"`
	AverageRating Amount     `json:"averageRating"`
	ReviewCount   int        `json:"reviewCount"`
}

type SubmitFeedbackRequest struct {
	ProductID int64    `json:"product_id"`
	UserID    int64    `json:"user_id"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	Images    []string `json:"images"`
}
