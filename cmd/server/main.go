package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitfuzz-storefront/internal/backend"
	"fitfuzz-storefront/internal/catalog"
	"fitfuzz-storefront/internal/config"
	"fitfuzz-storefront/internal/db"
	"fitfuzz-storefront/internal/feedback"
	"fitfuzz-storefront/internal/handler"
	"fitfuzz-storefront/internal/location"
	"fitfuzz-storefront/internal/logger"
	"fitfuzz-storefront/internal/metrics"
	"fitfuzz-storefront/internal/middleware"
	"fitfuzz-storefront/internal/order"
	"fitfuzz-storefront/internal/storage"
	"fitfuzz-storefront/internal/storefront"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sweepInterval    = 5 * time.Minute
	limiterInterval  = time.Minute
	shutdownTimeout  = 15 * time.Second
	redisPingTimeout = 5 * time.Second
)

var (
	openStoreFunc   = openStore
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

type server struct {
	router   http.Handler
	registry *storefront.Registry
	limiter  *middleware.RateLimiter
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	store, closeStore, err := openStoreFunc(cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newServer(cfg, store, reg)
	go s.registry.Run(ctx, sweepInterval)
	go s.limiter.Cleanup(ctx, limiterInterval)
	if p, ok := store.(purger); ok {
		go purgeLoop(ctx, p, sweepInterval)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.APITimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("storefront server starting",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageDriver),
			zap.String("backend", cfg.APIBaseURL),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

func newServer(cfg *config.Config, store storage.Store, reg *prometheus.Registry) *server {
	client := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout)

	locations := location.NewService(client)
	registry := storefront.NewRegistry(storefront.Deps{
		Store:      store,
		Locations:  locations,
		Placer:     client,
		PendingTTL: cfg.PendingWishlistTTL,
	}, cfg.SessionIdleTTL)
	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	h := handler.NewHandler(
		client,
		catalog.NewService(client, cfg.CatalogTTL),
		locations,
		order.NewService(client),
		feedback.NewService(client),
	)

	router := handler.NewRouter(handler.RouterConfig{
		Handler:       h,
		Sessions:      registry,
		Limiter:       limiter,
		Gatherer:      reg,
		AllowedOrigin: cfg.AllowedOrigin,
		Timeout:       cfg.APITimeout + 5*time.Second,
	})

	return &server{router: router, registry: registry, limiter: limiter}
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// purgeLoop drops expired rows from stores without native expiry.
func purgeLoop(ctx context.Context, p purger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PurgeExpired(ctx)
			if err != nil {
				logger.L().Warn("purge expired keys failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.L().Info("purged expired keys", zap.Int64("count", n))
			}
		}
	}
}

// openStore connects the storage driver selected by STORAGE_DRIVER. The
// returned func releases it.
func openStore(cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		database, err := db.NewDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgres(database), func() { _ = database.Close() }, nil

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.L().Info("redis connection established", zap.String("addr", cfg.RedisAddr))
		return storage.NewRedis(client), func() { _ = client.Close() }, nil

	case config.StorageMemory:
		logger.L().Warn("using in-memory storage; carts and sessions are lost on restart")
		return storage.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownStorage, cfg.StorageDriver)
}
