package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"

	"go.uber.org/zap"
)

// Store is the wishlist of one storefront device. Adds made while no user
// is bound are stashed per device and applied on the next login.
type Store struct {
	mu         sync.Mutex
	repo       Repository
	deviceID   string
	pendingTTL time.Duration
	userID     int64
	items      []Item
	// stale is set while the bound user's stored wishlist could not be
	// read. Nothing is written back until a later read succeeds.
	stale bool
}

func NewStore(repo Repository, deviceID string, pendingTTL time.Duration) *Store {
	return &Store{
		repo:       repo,
		deviceID:   deviceID,
		pendingTTL: pendingTTL,
		items:      []Item{},
	}
}

// SwitchUser loads userID's wishlist and, for a real user, drains the
// device's pending item into it once. The pending slot is cleared whether
// or not the item was applied. When the stored wishlist cannot be read the
// drained item is held in memory and written once a later read succeeds.
func (s *Store) SwitchUser(ctx context.Context, userID int64) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "wishlist"),
		zap.String("method", "SwitchUser"),
		zap.Int64("user_id", userID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.items = []Item{}
	s.stale = false
	if userID == 0 {
		return
	}
	s.load(ctx)

	pending, err := s.repo.TakePending(ctx, s.deviceID)
	if err != nil {
		log.Warn("pending wishlist item unreadable", zap.Error(err))
	}
	if pending == nil {
		return
	}
	if s.indexOf(pending.ProductID) >= 0 {
		log.Info("pending wishlist item already saved", zap.Int64("product_id", pending.ProductID))
		return
	}

	s.items = append(s.items, *pending)
	metrics.WishlistOperations.WithLabelValues("pending_drain").Inc()
	s.persist(ctx)
	log.Info("pending wishlist item applied", zap.Int64("product_id", pending.ProductID))
}

// load reads the bound user's wishlist. A corrupt slot loads as empty and
// may be overwritten; any other failure marks the store stale.
func (s *Store) load(ctx context.Context) {
	items, err := s.repo.Load(ctx, s.userID)
	if err != nil {
		s.stale = !errors.Is(err, ErrCorruptWishlist)
		logger.FromCtx(ctx).Warn("wishlist load failed, starting empty",
			zap.String("service", "wishlist"),
			zap.Int64("user_id", s.userID),
			zap.Bool("stale", s.stale),
			zap.Error(err),
		)
		if !s.stale {
			s.items = []Item{}
		}
		return
	}
	s.items = items
	s.stale = false
}

// refresh retries a failed load before a mutation, keeping items added
// while stale.
func (s *Store) refresh(ctx context.Context) {
	if !s.stale {
		return
	}
	local := s.items
	s.load(ctx)
	if s.stale {
		return
	}
	for _, it := range local {
		if s.indexOf(it.ProductID) < 0 {
			s.items = append(s.items, it)
		}
	}
}

func (s *Store) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Add saves item once. Without a bound user the item is stashed for the
// device and ErrLoginRequired is returned; the visible list is unchanged.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.ProductID <= 0 {
		return ErrInvalidProductID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		if err := s.repo.StashPending(ctx, s.deviceID, item, s.pendingTTL); err != nil {
			logger.FromCtx(ctx).Warn("failed to stash pending wishlist item",
				zap.String("service", "wishlist"),
				zap.String("device_id", s.deviceID),
				zap.Error(err),
			)
		}
		metrics.WishlistOperations.WithLabelValues("stash").Inc()
		return ErrLoginRequired
	}

	s.refresh(ctx)
	if s.indexOf(item.ProductID) >= 0 {
		return nil
	}
	s.items = append(s.items, item)

	metrics.WishlistOperations.WithLabelValues("add").Inc()
	s.persist(ctx)
	return nil
}

func (s *Store) Remove(ctx context.Context, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return
	}
	s.refresh(ctx)
	idx := s.indexOf(productID)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	metrics.WishlistOperations.WithLabelValues("remove").Inc()
	s.persist(ctx)
}

// Toggle removes item when present and adds it otherwise. It reports
// whether the item is in the wishlist afterwards.
func (s *Store) Toggle(ctx context.Context, item Item) (bool, error) {
	if s.Contains(item.ProductID) {
		s.Remove(ctx, item.ProductID)
		return false, nil
	}
	if err := s.Add(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// Clear empties the wishlist and removes its persisted slot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return
	}
	s.items = []Item{}
	s.stale = false

	metrics.WishlistOperations.WithLabelValues("clear").Inc()
	if err := s.repo.Delete(ctx, s.userID); err != nil {
		metrics.PersistFailures.WithLabelValues("wishlist").Inc()
		logger.FromCtx(ctx).Warn("wishlist delete failed",
			zap.String("service", "wishlist"),
			zap.Int64("user_id", s.userID),
			zap.Error(err),
		)
	}
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Contains(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(productID) >= 0
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(productID int64) int {
	for i, it := range s.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context) {
	if s.stale {
		logger.FromCtx(ctx).Warn("wishlist not persisted, stored wishlist unreadable",
			zap.String("service", "wishlist"),
			zap.Int64("user_id", s.userID),
		)
		return
	}
	if err := s.repo.Save(ctx, s.userID, s.items); err != nil {
		metrics.PersistFailures.WithLabelValues("wishlist").Inc()
		logger.FromCtx(ctx).Warn("wishlist persist failed",
			zap.String("service", "wishlist"),
			zap.Int64("user_id", s.userID),
			zap.Error(err),
		)
	}
}
