package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pos-terminal/internal/config"
	"pos-terminal/internal/core"
	"pos-terminal/internal/db"
	"pos-terminal/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Bootstrap wires the terminal from cfg: the local store, the currency
// registry, the restored cart and, when DATABASE_URL is reachable, the
// catalog and sale backend. Without a backend the terminal runs offline:
// carts can be built from snapshots but not checked out. The returned
// cleanup closes everything that was opened.
func Bootstrap(ctx context.Context, cfg *config.Config) (ApplicationService, func(), error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { _ = store.Close() }}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry, err := core.DefaultRegistry().Rebase(cfg.BaseCurrency)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("invalid BASE_CURRENCY: %w", err)
	}
	currency := core.NewCurrencyService(ctx, registry, store)
	cart := core.RestoreCart(ctx, store)

	opts := Options{RevalidateStock: cfg.RevalidateStock}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	switch {
	case errors.Is(err, db.ErrNoDatabaseURL):
		log.Println("Warning: DATABASE_URL is not set, running offline")
	case err != nil:
		log.Printf("Warning: backend unreachable, running offline: %v", err)
	default:
		closers = append(closers, pool.Close)
		opts.Catalog = core.NewCatalogService(pool, cfg.CatalogCacheTTL)
		opts.Sales = core.NewSaleService(pool)
	}

	return NewAppService(currency, cart, opts), cleanup, nil
}

// OpenStore opens the client-local store: Redis when REDIS_ADDR is set,
// otherwise the SQLite file at LOCAL_STORE_PATH.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedisStore(client, cfg.RedisNamespace), nil
	}
	store, err := storage.OpenSQLite(cfg.LocalStorePath)
	if err != nil {
		return nil, fmt.Errorf("unable to open local store: %w", err)
	}
	return store, nil
}
