package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitfuzz-storefront/internal/storage"
)

type Repository interface {
	Load(ctx context.Context, userID int64) ([]Item, error)
	Save(ctx context.Context, userID int64, items []Item) error
	Delete(ctx context.Context, userID int64) error

	// StashPending keeps one item for a device until the next login.
	StashPending(ctx context.Context, deviceID string, item Item, ttl time.Duration) error
	// TakePending returns and removes the stashed item. It returns nil when
	// nothing is stashed.
	TakePending(ctx context.Context, deviceID string) (*Item, error)
}

type repository struct {
	store storage.Store
}

func NewRepository(store storage.Store) Repository {
	return &repository{store: store}
}

func (r *repository) Load(ctx context.Context, userID int64) ([]Item, error) {
	raw, err := r.store.Get(ctx, storage.WishlistKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadWishlist, err)
	}

	var stored []Item
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWishlist, err)
	}

	items := make([]Item, 0, len(stored))
	seen := make(map[int64]struct{}, len(stored))
	for _, it := range stored {
		if _, dup := seen[it.ProductID]; dup {
			continue
		}
		seen[it.ProductID] = struct{}{}
		items = append(items, it)
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, userID int64, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedStoreWishlist, err)
	}
	if err := r.store.Set(ctx, storage.WishlistKey(userID), raw, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedStoreWishlist, err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, userID int64) error {
	if err := r.store.Delete(ctx, storage.WishlistKey(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedStoreWishlist, err)
	}
	return nil
}

func (r *repository) StashPending(ctx context.Context, deviceID string, item Item, ttl time.Duration) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedPending, err)
	}
	key := storage.DeviceKey(deviceID, storage.SlotPendingWishlist)
	if err := r.store.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedPending, err)
	}
	return nil
}

// TakePending always clears the slot, even when its content is unreadable.
func (r *repository) TakePending(ctx context.Context, deviceID string) (*Item, error) {
	key := storage.DeviceKey(deviceID, storage.SlotPendingWishlist)

	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	delErr := r.store.Delete(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedPending, err)
	}

	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedPending, err)
	}
	if delErr != nil {
		return &item, fmt.Errorf("%w: %v", ErrFailedPending, delErr)
	}
	return &item, nil
}
