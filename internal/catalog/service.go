package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/identity"
	"fitfuzz-storefront/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	kindColors = "colors"
	kindSizes  = "sizes"
)

// Source is the backend surface the catalog reads from.
type Source interface {
	Colors(ctx context.Context) ([]backend.Option, error)
	Sizes(ctx context.Context) ([]backend.Option, error)
	ProductColors(ctx context.Context, productID int64) ([]backend.Option, error)
	ProductSizes(ctx context.Context, productID int64) ([]backend.Option, error)
}

type Service interface {
	Colors(ctx context.Context) ([]Option, error)
	Sizes(ctx context.Context) ([]Option, error)
	// ProductColors and ProductSizes list the options one product is
	// offered in.
	ProductColors(ctx context.Context, productID int64) ([]Option, error)
	ProductSizes(ctx context.Context, productID int64) ([]Option, error)
	// DescribeVariant fills in the option names for v, failing with
	// ErrOptionUnavailable for ids productID is not offered in. When the
	// product's options cannot be read, ids are checked against master
	// data instead.
	DescribeVariant(ctx context.Context, productID int64, v identity.Variant) (identity.Variant, error)
}

type cached struct {
	options []Option
	expires time.Time
}

type service struct {
	src   Source
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]cached
}

func NewService(src Source, ttl time.Duration) Service {
	return &service{
		src:   src,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[string]cached, 2),
	}
}

func (s *service) Colors(ctx context.Context) ([]Option, error) {
	return s.load(ctx, kindColors, s.src.Colors)
}

func (s *service) Sizes(ctx context.Context) ([]Option, error) {
	return s.load(ctx, kindSizes, s.src.Sizes)
}

func (s *service) ProductColors(ctx context.Context, productID int64) ([]Option, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	return s.load(ctx, productKey(kindColors, productID), func(ctx context.Context) ([]backend.Option, error) {
		return s.src.ProductColors(ctx, productID)
	})
}

func (s *service) ProductSizes(ctx context.Context, productID int64) ([]Option, error) {
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	return s.load(ctx, productKey(kindSizes, productID), func(ctx context.Context) ([]backend.Option, error) {
		return s.src.ProductSizes(ctx, productID)
	})
}

func (s *service) DescribeVariant(ctx context.Context, productID int64, v identity.Variant) (identity.Variant, error) {
	if v.ColorID != nil {
		name, err := s.optionName(ctx, kindColors, productID, *v.ColorID, s.ProductColors, s.Colors)
		if err != nil {
			return v, err
		}
		v.ColorName = name
	}

	if v.SizeID != nil {
		name, err := s.optionName(ctx, kindSizes, productID, *v.SizeID, s.ProductSizes, s.Sizes)
		if err != nil {
			return v, err
		}
		v.SizeName = name
	}

	return v, nil
}

// optionName resolves id against the product's own options, falling back
// to master data when those are unavailable.
func (s *service) optionName(
	ctx context.Context,
	kind string,
	productID, id int64,
	scoped func(context.Context, int64) ([]Option, error),
	master func(context.Context) ([]Option, error),
) (string, error) {
	var opts []Option
	var err error
	if productID > 0 {
		opts, err = scoped(ctx, productID)
		if err != nil {
			logger.FromCtx(ctx).Warn("product options unavailable, checking master data",
				zap.String("service", "catalog"),
				zap.String("kind", kind),
				zap.Int64("product_id", productID),
				zap.Error(err),
			)
		}
	}
	if productID <= 0 || err != nil {
		opts, err = master(ctx)
		if err != nil {
			return "", err
		}
	}

	name, ok := lookup(opts, id)
	if !ok {
		return "", fmt.Errorf("%w: %s %d", ErrOptionUnavailable, kind, id)
	}
	if name == "" && productID > 0 {
		// Product lists may carry ids only.
		if all, err := master(ctx); err == nil {
			name, _ = lookup(all, id)
		}
	}
	return name, nil
}

func productKey(kind string, productID int64) string {
	return kind + ":" + strconv.FormatInt(productID, 10)
}

func (s *service) load(
	ctx context.Context,
	kind string,
	fetch func(context.Context) ([]backend.Option, error),
) ([]Option, error) {
	s.mu.RLock()
	c, ok := s.cache[kind]
	s.mu.RUnlock()
	if ok && s.now().Before(c.expires) {
		return c.options, nil
	}

	v, err, shared := s.group.Do(kind, func() (any, error) {
		// The fetch outlives any single waiter.
		raw, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		opts := make([]Option, 0, len(raw))
		for _, o := range raw {
			if !o.ID.Valid {
				continue
			}
			opts = append(opts, Option{ID: o.ID.Value, Name: o.Name})
		}

		now := s.now()
		s.mu.Lock()
		for k, c := range s.cache {
			if strings.Contains(k, ":") && !now.Before(c.expires) {
				delete(s.cache, k)
			}
		}
		s.cache[kind] = cached{options: opts, expires: now.Add(s.ttl)}
		s.mu.Unlock()
		return opts, nil
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("master data fetch failed",
			zap.String("service", "catalog"),
			zap.String("kind", kind),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		if ok {
			return c.options, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMasterData, err)
	}
	return v.([]Option), nil
}

func lookup(opts []Option, id int64) (string, bool) {
	for _, o := range opts {
		if o.ID == id {
			return o.Name, true
		}
	}
	return "", false
}
