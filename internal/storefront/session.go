// Package storefront keeps one shopping session per device and wires its
// auth, cart, wishlist and checkout together.
package storefront

import (
	"context"
	"errors"
	"sync"
	"time"

	"fitfuzz-storefront/internal/auth"
	"fitfuzz-storefront/internal/cart"
	"fitfuzz-storefront/internal/checkout"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"
	"fitfuzz-storefront/internal/storage"
	"fitfuzz-storefront/internal/wishlist"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxDeviceIDLen = 128

var ErrInvalidDeviceID = errors.New("invalid device id")

type Session struct {
	DeviceID string
	Auth     *auth.Session
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Checkout *checkout.Orchestrator

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Deps struct {
	Store      storage.Store
	Locations  checkout.Locator
	Placer     checkout.Placer
	PendingTTL time.Duration
}

// Registry owns the live device sessions. A session is built and restored
// from storage on first use and evicted after IdleTTL without requests.
type Registry struct {
	deps    Deps
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	opening  singleflight.Group
}

func NewRegistry(deps Deps, idleTTL time.Duration) *Registry {
	return &Registry{
		deps:     deps,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for deviceID, creating and restoring it if
// needed.
func (r *Registry) Get(ctx context.Context, deviceID string) (*Session, error) {
	if !ValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}

	if s, ok := r.lookup(deviceID); ok {
		s.touch(r.now())
		return s, nil
	}

	// Restore reads storage, so it runs outside r.mu. Concurrent first
	// requests from one device share a single open.
	v, _, _ := r.opening.Do(deviceID, func() (any, error) {
		if s, ok := r.lookup(deviceID); ok {
			return s, nil
		}

		s := r.build(deviceID)
		s.Auth.Restore(context.WithoutCancel(ctx))
		s.touch(r.now())

		r.mu.Lock()
		r.sessions[deviceID] = s
		n := len(r.sessions)
		r.mu.Unlock()
		metrics.ActiveSessions.Set(float64(n))

		logger.FromCtx(ctx).Info("device session opened",
			zap.String("service", "storefront"),
			zap.Int64("user_id", s.Auth.UserID()),
		)
		return s, nil
	})

	s := v.(*Session)
	s.touch(r.now())
	return s, nil
}

func (r *Registry) lookup(deviceID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[deviceID]
	return s, ok
}

func (r *Registry) build(deviceID string) *Session {
	c := cart.NewStore(cart.NewRepository(r.deps.Store))
	w := wishlist.NewStore(wishlist.NewRepository(r.deps.Store), deviceID, r.deps.PendingTTL)
	o := checkout.NewOrchestrator(c, r.deps.Locations, r.deps.Placer)
	a := auth.NewSession(r.deps.Store, deviceID)

	a.OnUserChange(func(ctx context.Context, userID int64) {
		c.SwitchUser(ctx, userID)
		w.SwitchUser(ctx, userID)
		o.Reset()
	})

	return &Session{
		DeviceID: deviceID,
		Auth:     a,
		Cart:     c,
		Wishlist: w,
		Checkout: o,
	}
}

// Sweep evicts sessions idle for longer than the idle TTL and reports how
// many were removed. Their state is already persisted.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && !s.Checkout.Summary().Submitting {
			delete(r.sessions, id)
			removed++
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.L().Info("evicted idle device sessions", zap.Int("count", n))
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ValidDeviceID accepts 1-128 characters of letters, digits, '-' and '_'.
func ValidDeviceID(id string) bool {
	if id == "" || len(id) > maxDeviceIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
