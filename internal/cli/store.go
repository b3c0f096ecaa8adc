package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/feedstream/internal/config"
	"github.com/aretw0/feedstream/pkg/adapters/file"
	"github.com/aretw0/feedstream/pkg/adapters/memory"
	"github.com/aretw0/feedstream/pkg/adapters/redis"
	"github.com/aretw0/feedstream/pkg/ports"
)

// OpenStore creates the snapshot store selected by cfg. The returned func
// releases it.
func OpenStore(ctx context.Context, cfg config.Store) (ports.SnapshotStore, func() error, error) {
	nop := func() error { return nil }
	switch cfg.Driver {
	case config.StoreMemory, "":
		return memory.NewStore(), nop, nil
	case config.StoreFile:
		return file.New(cfg.Path), nop, nil
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
