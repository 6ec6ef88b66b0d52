package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/storage"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Session holds the signed-in user and seller of one storefront device.
type Session struct {
	mu        sync.RWMutex
	store     storage.Store
	deviceID  string
	now       func() time.Time
	user      *User
	seller    *Seller
	listeners []UserChangeFunc
}

func NewSession(store storage.Store, deviceID string) *Session {
	return &Session{store: store, deviceID: deviceID, now: time.Now}
}

// OnUserChange registers fn to run after every user change, including the
// one made by Restore.
func (s *Session) OnUserChange(fn UserChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Restore loads both blobs for the device. Unreadable blobs and users whose
// token has expired are discarded.
func (s *Session) Restore(ctx context.Context) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "auth"),
		zap.String("method", "Restore"),
	)

	var user *User
	var u User
	if s.load(ctx, storage.SlotUser, &u) {
		switch {
		case u.ID <= 0:
			log.Warn("discarding stored user without id")
			s.drop(ctx, storage.SlotUser)
		case tokenExpired(u.Token, s.now()):
			log.Info("stored user token expired", zap.Int64("user_id", u.ID))
			s.drop(ctx, storage.SlotUser)
		default:
			user = &u
		}
	}

	var seller *Seller
	var sl Seller
	if s.load(ctx, storage.SlotSeller, &sl) {
		if sl.SellerID > 0 {
			seller = &sl
		} else {
			s.drop(ctx, storage.SlotSeller)
		}
	}

	s.mu.Lock()
	s.user = user
	s.seller = seller
	s.mu.Unlock()

	s.notify(ctx, user)
}

func (s *Session) Login(ctx context.Context, u User) error {
	if u.ID <= 0 {
		return ErrInvalidUser
	}

	s.save(ctx, storage.SlotUser, u)

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	logger.FromCtx(ctx).Info("user signed in",
		zap.String("service", "auth"),
		zap.Int64("user_id", u.ID),
	)
	s.notify(ctx, &u)
	return nil
}

func (s *Session) Logout(ctx context.Context) {
	s.drop(ctx, storage.SlotUser)

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.notify(ctx, nil)
}

func (s *Session) SellerLogin(ctx context.Context, sl Seller) error {
	if sl.SellerID <= 0 {
		return ErrInvalidSeller
	}

	s.save(ctx, storage.SlotSeller, sl)

	s.mu.Lock()
	s.seller = &sl
	s.mu.Unlock()
	return nil
}

func (s *Session) SellerLogout(ctx context.Context) {
	s.drop(ctx, storage.SlotSeller)

	s.mu.Lock()
	s.seller = nil
	s.mu.Unlock()
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Seller() *Seller {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.seller == nil {
		return nil
	}
	sl := *s.seller
	return &sl
}

func (s *Session) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return 0
	}
	return s.user.ID
}

func (s *Session) Authenticated() bool {
	return s.UserID() != 0
}

func (s *Session) notify(ctx context.Context, u *User) {
	var id int64
	if u != nil {
		id = u.ID
	}

	s.mu.RLock()
	listeners := make([]UserChangeFunc, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx, id)
	}
}

func (s *Session) load(ctx context.Context, slot string, dst any) bool {
	raw, err := s.store.Get(ctx, storage.DeviceKey(s.deviceID, slot))
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("session slot read failed",
			zap.String("service", "auth"),
			zap.String("slot", slot),
			zap.Error(err),
		)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logger.FromCtx(ctx).Warn("session slot corrupt",
			zap.String("service", "auth"),
			zap.String("slot", slot),
			zap.Error(err),
		)
		s.drop(ctx, slot)
		return false
	}
	return true
}

func (s *Session) save(ctx context.Context, slot string, v any) {
	raw, err := json.Marshal(v)
	if err == nil {
		err = s.store.Set(ctx, storage.DeviceKey(s.deviceID, slot), raw, 0)
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("session slot write failed",
			zap.String("service", "auth"),
			zap.String("slot", slot),
			zap.Error(err),
		)
	}
}

func (s *Session) drop(ctx context.Context, slot string) {
	if err := s.store.Delete(ctx, storage.DeviceKey(s.deviceID, slot)); err != nil {
		logger.FromCtx(ctx).Warn("session slot delete failed",
			zap.String("service", "auth"),
			zap.String("slot", slot),
			zap.Error(err),
		)
	}
}

// tokenExpired reads the exp claim without verifying the signature; the
// backend owns the key. Opaque or exp-less tokens never expire here.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
