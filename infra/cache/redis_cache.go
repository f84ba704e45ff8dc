package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisCache implements cache.Cache using Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewRedisCache creates a new RedisCache from a redis:// URL.
func NewRedisCache(url, prefix string, ttl time.Duration, logger *slog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis cache: invalid URL: %w", err)
	}
	return NewRedisCacheWithClient(redis.NewClient(opt), prefix, ttl, logger), nil
}

// NewRedisCacheWithClient creates a new RedisCache over an existing client.
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, logger: logger.With("cache", "redis")}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

func (r *RedisCache) genKey(key string) string {
	return r.prefix + "gen:" + key
}

var errStaleGeneration = errors.New("redis cache: key invalidated during compute")

// generation reads the invalidation counter of key. A missing counter is 0.
func generation(ctx context.Context, c redis.Cmdable, genKey string) (int64, error) {
	gen, err := c.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetOrCompute returns the cached value or computes and stores it. Redis
// errors degrade to computing without caching. A value computed while the
// key was invalidated is returned but not stored.
func (r *RedisCache) GetOrCompute(ctx context.Context, key string, compute cache.ComputeFunc) ([]byte, error) {
	v, err, _ := r.group.Do(key, func() (any, error) {
		val, err := r.client.Get(ctx, r.key(key)).Bytes()
		if err == nil {
			r.logger.Debug("Redis cache hit", "key", key)
			return val, nil
		}
		if !errors.Is(err, redis.Nil) {
			r.logger.Error("Redis cache get error", "key", key, "error", err)
		} else {
			r.logger.Debug("Redis cache miss", "key", key)
		}

		gen, genErr := generation(ctx, r.client, r.genKey(key))
		val, err = compute(ctx)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			r.logger.Error("Redis cache generation read error", "key", key, "error", genErr)
			return val, nil
		}
		if err := r.storeIfCurrent(ctx, key, gen, val); err != nil {
			if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
				r.logger.Debug("Redis cache skip stale set", "key", key)
			} else {
				r.logger.Error("Redis cache set error", "key", key, "error", err)
			}
		}
		return val, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// storeIfCurrent sets key only while its generation still equals gen.
func (r *RedisCache) storeIfCurrent(ctx context.Context, key string, gen int64, val []byte) error {
	genKey := r.genKey(key)
	return r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key(key), val, r.ttl)
			return nil
		})
		return err
	}, genKey)
}

// Invalidate deletes key and bumps its generation so in-flight computes
// do not store their result.
func (r *RedisCache) Invalidate(ctx context.Context, key string) error {
	r.group.Forget(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, r.genKey(key))
		pipe.Del(ctx, r.key(key))
		return nil
	})
	if err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "key", key)
	return nil
}

// Close closes the client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

var _ cache.Cache = (*RedisCache)(nil)
