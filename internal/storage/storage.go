// Package storage is the key-value persistence port used by the cart,
// wishlist and auth session stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("storage: key not found")

// Store persists opaque values by key. A zero ttl means the value never
// expires. Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Device-scoped slot names.
const (
	SlotUser            = "fitfuzzUser"
	SlotSeller          = "fitfuzzSeller"
	SlotPendingWishlist = "pending_wishlist"
)

func CartKey(userID int64) string {
	return fmt.Sprintf("cart_%d", userID)
}

func WishlistKey(userID int64) string {
	return fmt.Sprintf("wishlist_%d", userID)
}

// DeviceKey scopes a slot to one storefront device.
func DeviceKey(deviceID, slot string) string {
	return fmt.Sprintf("device:%s:%s", deviceID, slot)
}
