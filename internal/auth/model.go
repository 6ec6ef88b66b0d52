package auth

import "context"

// User is the customer blob kept in the fitfuzzUser slot.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	Token string `json:"token,omitempty"`
}

// Seller is the blob kept in the fitfuzzSeller slot.
type Seller struct {
	SellerID  int64  `json:"seller_id"`
	StoreName string `json:"storeName"`
	Email     string `json:"email"`
	Token     string `json:"token,omitempty"`
}

// UserChangeFunc observes the active user id; zero means signed out.
type UserChangeFunc func(ctx context.Context, userID int64)
