package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
)

// ErrRedisUnavailable is returned by Open when the redis backend is forced
// but no client could be connected.
var ErrRedisUnavailable = errors.New("store: redis backend requested but server is unreachable")

// Open builds the backend selected by sc.  rdb is the client produced by
// config.NewRedisClient and may be nil.  The returned close function
// releases backend-owned resources; it never closes rdb, which the caller
// also hands to the rate limiter and cache.
func Open(ctx context.Context, sc config.StoreConfig, rdb *redis.Client) (Store, func() error, error) {
	noop := func() error { return nil }
	switch sc.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendRedis:
		if rdb == nil {
			return nil, noop, ErrRedisUnavailable
		}
		return NewRedisStore(rdb), noop, nil
	case config.BackendMySQL:
		db, err := database.Open(ctx, sc.MySQL)
		if err != nil {
			return nil, noop, fmt.Errorf("open mysql: %w", err)
		}
		s := NewMySQLStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("ensure kv schema: %w", err)
		}
		return s, db.Close, nil
	case config.BackendAuto, "":
		if rdb != nil {
			return NewRedisStore(rdb), noop, nil
		}
		return NewMemoryStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
