package initializer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/amirasaad/ledger/infra"
	infra_cache "github.com/amirasaad/ledger/infra/cache"
	infra_queue "github.com/amirasaad/ledger/infra/queue"
	infra_repository "github.com/amirasaad/ledger/infra/repository"
	"github.com/amirasaad/ledger/pkg/cache"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies initializes all the application dependencies
func InitializeDependencies(cfg *config.App) (
	deps *config.Deps,
	err error,
) {
	deps = &config.Deps{Config: cfg}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	// Initialize database
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		return nil, err
	}
	deps.DB = db
	deps.Metrics = metrics.New(prometheus.DefaultRegisterer)

	// Initialize unit of work
	deps.Uow = infra_repository.NewUoW(db)

	var client *redis.Client
	if cfg.Queue.Backend == config.QueueRedis || cfg.Cache.Backend == config.CacheRedis {
		if client, err = NewRedisClient(cfg.Redis); err != nil {
			return nil, err
		}
		deps.Redis = client
	}

	// Initialize balance job queue
	deps.Queue, err = NewQueue(cfg, client, logger, deps.Metrics)
	if err != nil {
		Close(deps)
		return nil, fmt.Errorf("failed to create %s queue: %w", cfg.Queue.Backend, err)
	}

	// Initialize budget summary cache
	deps.Cache = NewCache(cfg.Cache, client, logger)

	logger.Info("Dependencies initialized",
		"queue", cfg.Queue.Backend,
		"cache", cfg.Cache.Backend,
	)
	return deps, nil
}

// NewRedisClient builds the shared redis client from the REDIS_* settings.
func NewRedisClient(cfg *config.Redis) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	opt.PoolSize = cfg.PoolSize
	opt.DialTimeout = cfg.DialTimeout
	opt.ReadTimeout = cfg.ReadTimeout
	opt.WriteTimeout = cfg.WriteTimeout
	return redis.NewClient(opt), nil
}

// NewQueue builds the configured queue backend. client is only used by the
// redis backend.
func NewQueue(
	cfg *config.App,
	client *redis.Client,
	logger *slog.Logger,
	m *metrics.Metrics,
) (queue.Queue, error) {
	q := cfg.Queue
	retry := infra_queue.RetryConfig{
		MaxRetries:      q.MaxRetries,
		InitialInterval: q.InitialInterval,
		MaxInterval:     q.MaxInterval,
	}
	switch q.Backend {
	case config.QueueInline:
		return infra_queue.NewInline(retry, logger), nil
	case config.QueueMemory:
		return infra_queue.NewMemory(infra_queue.MemoryConfig{
			Workers:    q.Workers,
			BufferSize: q.BufferSize,
			Retry:      retry,
		}, logger, m), nil
	case config.QueueRedis:
		if client == nil {
			return nil, errors.New("redis queue needs a redis client")
		}
		consumer := q.Consumer
		if consumer == "" {
			consumer, _ = os.Hostname()
		}
		return infra_queue.NewRedis(client, infra_queue.RedisConfig{
			Stream:       cfg.Redis.KeyPrefix + q.Stream,
			Group:        q.Group,
			Consumer:     consumer,
			Block:        q.Block,
			ClaimMinIdle: q.ClaimMinIdle,
			Retry:        retry,
		}, logger, m)
	case config.QueueKafka:
		k := cfg.Kafka
		return infra_queue.NewKafka(infra_queue.KafkaConfig{
			Brokers:       infra_queue.ParseBrokers(k.Brokers),
			Topic:         k.Topic,
			GroupID:       k.GroupID,
			SASLUsername:  k.SASLUsername,
			SASLPassword:  k.SASLPassword,
			TLSEnabled:    k.TLSEnabled,
			TLSCAFile:     k.TLSCAFile,
			TLSSkipVerify: k.TLSSkipVerify,
			Retry:         retry,
		}, logger, m)
	default:
		return nil, fmt.Errorf("unknown queue backend %q", q.Backend)
	}
}

// NewCache builds the configured summary cache. It falls back to memory when
// redis is selected without a client.
func NewCache(cfg *config.Cache, client *redis.Client, logger *slog.Logger) cache.Cache {
	if cfg.Backend == config.CacheRedis && client != nil {
		return infra_cache.NewRedisCacheWithClient(client, cfg.Prefix, cfg.TTL, logger)
	}
	return infra_cache.NewMemoryCache(cfg.TTL)
}

// Close releases every dependency that holds a connection.
func Close(deps *config.Deps) {
	if deps == nil {
		return
	}
	closers := []any{deps.Queue, deps.Cache}
	for _, c := range closers {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil && deps.Logger != nil {
				deps.Logger.Warn("Failed to close dependency", "type", fmt.Sprintf("%T", c), "error", err)
			}
		}
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	if deps.DB != nil {
		if sqlDB, err := deps.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
