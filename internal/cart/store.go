package cart

import (
	"context"
	"errors"
	"sync"

	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the cart of one storefront session. It is bound to at most one
// user at a time; with no user bound it is empty and never persisted.
type Store struct {
	mu     sync.Mutex
	repo   Repository
	userID int64
	items  []LineItem
	// stale is set while the bound user's stored cart could not be read.
	// Nothing is written back until a later read succeeds.
	stale bool
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo, items: []LineItem{}}
}

// SwitchUser rebinds the store to userID and loads that user's cart.
// Zero unbinds it. A cart that cannot be read loads as empty.
func (s *Store) SwitchUser(ctx context.Context, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.items = []LineItem{}
	s.stale = false
	if userID == 0 {
		return
	}
	s.load(ctx)
}

// load reads the bound user's cart. A corrupt slot loads as empty and may
// be overwritten; any other failure marks the store stale.
func (s *Store) load(ctx context.Context) {
	items, err := s.repo.Load(ctx, s.userID)
	if err != nil {
		s.stale = !errors.Is(err, ErrCorruptCart)
		logger.FromCtx(ctx).Warn("cart load failed, starting empty",
			zap.String("service", "cart"),
			zap.String("method", "load"),
			zap.Int64("user_id", s.userID),
			zap.Bool("stale", s.stale),
			zap.Error(err),
		)
		if !s.stale {
			s.items = []LineItem{}
		}
		return
	}
	s.items = items
	s.stale = false
}

// refresh retries a failed load before a mutation. Lines held in memory
// while stale are merged onto the stored cart once it reads.
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
		if idx := s.indexOf(it.Key()); idx >= 0 {
			s.items[idx].Quantity += it.Quantity
			continue
		}
		s.items = append(s.items, it)
	}
}

func (s *Store) UserID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Add merges c into the line with the same key, or appends a new line.
// It fails with ErrUserNotAuthenticated when no user is bound.
func (s *Store) Add(ctx context.Context, c Candidate) (LineItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "cart"),
		zap.String("method", "Add"),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		log.Info("add to cart without user")
		return LineItem{}, ErrUserNotAuthenticated
	}
	s.refresh(ctx)

	productID := c.ProductID
	if productID == 0 {
		id, err := identity.ParseProductID(c.ID)
		if err != nil {
			log.Warn("cannot resolve product id", zap.String("id", c.ID), zap.Error(err))
			return LineItem{}, ErrInvalidProductID
		}
		productID = id
	}
	if productID <= 0 {
		return LineItem{}, ErrInvalidProductID
	}
	if c.Price.IsNegative() {
		return LineItem{}, ErrInvalidPrice
	}

	qty := c.Quantity
	if qty <= 0 {
		qty = 1
	}

	line := LineItem{
		ID:        c.ID,
		ProductID: productID,
		Name:      c.Name,
		ImageURL:  c.ImageURL,
		Price:     c.Price,
		SellerID:  c.SellerID,
		Variant:   c.Variant,
		Quantity:  qty,
	}
	if line.ID == "" {
		line.ID = line.Key()
	}

	key := line.Key()
	if idx := s.indexOf(key); idx >= 0 {
		s.items[idx].Quantity += qty
		line = s.items[idx]
	} else {
		s.items = append(s.items, line)
	}

	metrics.CartOperations.WithLabelValues("add").Inc()
	s.persist(ctx)

	log.Info("cart line added",
		zap.Int64("user_id", s.userID),
		zap.String("key", key),
		zap.Int("quantity", line.Quantity),
	)
	return line, nil
}

// Remove drops the line with key. Unknown keys and an unbound store are
// no-ops.
func (s *Store) Remove(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return
	}
	s.refresh(ctx)
	idx := s.indexOf(key)
	if idx < 0 {
		return
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)

	metrics.CartOperations.WithLabelValues("remove").Inc()
	s.persist(ctx)
}

// UpdateQuantity sets the quantity of the line with key. A quantity of
// zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return
	}
	s.refresh(ctx)
	idx := s.indexOf(key)
	if idx < 0 {
		return
	}
	if quantity <= 0 {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
	} else {
		s.items[idx].Quantity = quantity
	}

	metrics.CartOperations.WithLabelValues("update").Inc()
	s.persist(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == 0 {
		return
	}
	s.items = []LineItem{}
	s.stale = false

	metrics.CartOperations.WithLabelValues("clear").Inc()
	s.persist(ctx)
}

// RemoveOrdered takes the ordered quantities off userID's cart. Lines added
// or topped up after the order was built keep the difference. When userID
// is no longer bound, its stored cart is updated instead.
func (s *Store) RemoveOrdered(ctx context.Context, userID int64, ordered []LineItem) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "cart"),
		zap.String("method", "RemoveOrdered"),
		zap.Int64("user_id", userID),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == 0 {
		return
	}
	metrics.CartOperations.WithLabelValues("ordered").Inc()

	if s.userID == userID {
		s.refresh(ctx)
		s.items = deduct(s.items, ordered)
		s.persist(ctx)
		return
	}

	items, err := s.repo.Load(ctx, userID)
	if err != nil {
		log.Warn("ordered lines left in stored cart", zap.Error(err))
		return
	}
	if err := s.repo.Save(ctx, userID, deduct(items, ordered)); err != nil {
		metrics.PersistFailures.WithLabelValues("cart").Inc()
		log.Warn("cart persist failed", zap.Error(err))
	}
}

func deduct(items, ordered []LineItem) []LineItem {
	taken := make(map[string]int, len(ordered))
	for _, it := range ordered {
		taken[it.Key()] += it.Quantity
	}

	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		it.Quantity -= taken[it.Key()]
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Find(key string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(key); idx >= 0 {
		return s.items[idx], true
	}
	return LineItem{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// TotalItems is the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (s *Store) indexOf(key string) int {
	for i, it := range s.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

// persist writes the current lines for the bound user. Failures are logged
// and counted; the in-memory cart stays authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.stale {
		logger.FromCtx(ctx).Warn("cart not persisted, stored cart unreadable",
			zap.String("service", "cart"),
			zap.Int64("user_id", s.userID),
		)
		return
	}
	if err := s.repo.Save(ctx, s.userID, s.items); err != nil {
		metrics.PersistFailures.WithLabelValues("cart").Inc()
		logger.FromCtx(ctx).Warn("cart persist failed",
			zap.String("service", "cart"),
			zap.Int64("user_id", s.userID),
			zap.Error(err),
		)
	}
}
