package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/storage"

	"go.uber.org/zap"
)

type Repository interface {
	Load(ctx context.Context, userID int64) ([]LineItem, error)
	Save(ctx context.Context, userID int64, items []LineItem) error
}

type repository struct {
	store storage.Store
}

func NewRepository(store storage.Store) Repository {
	return &repository{store: store}
}

// Load returns the persisted cart for userID. A missing slot is an empty
// cart. Lines with a non-positive quantity are dropped and lines without a
// product id get one recovered from their item id.
func (r *repository) Load(ctx context.Context, userID int64) ([]LineItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "cart"),
		zap.String("method", "Load"),
		zap.Int64("user_id", userID),
	)

	raw, err := r.store.Get(ctx, storage.CartKey(userID))
	if errors.Is(err, storage.ErrNotFound) {
		return []LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedLoadCart, err)
	}

	var stored []LineItem
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	items := make([]LineItem, 0, len(stored))
	seen := make(map[string]int, len(stored))
	for _, it := range stored {
		if it.Quantity <= 0 {
			log.Warn("dropping cart line with invalid quantity",
				zap.String("id", it.ID),
				zap.Int("quantity", it.Quantity),
			)
			continue
		}
		if it.ProductID == 0 {
			id, perr := identity.ParseProductID(it.ID)
			if perr != nil {
				log.Error("cart line has no usable product id",
					zap.String("id", it.ID),
					zap.Error(perr),
				)
			}
			it.ProductID = id
		}

		if idx, ok := seen[it.Key()]; ok {
			items[idx].Quantity += it.Quantity
			continue
		}
		seen[it.Key()] = len(items)
		items = append(items, it)
	}
	return items, nil
}

func (r *repository) Save(ctx context.Context, userID int64, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedStoreCart, err)
	}
	if err := r.store.Set(ctx, storage.CartKey(userID), raw, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedStoreCart, err)
	}
	return nil
}
