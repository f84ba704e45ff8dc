package initializer

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/ledger/infra/cache"
	infra_queue "github.com/amirasaad/ledger/infra/queue"
	"github.com/amirasaad/ledger/pkg/config"
	"github.com/amirasaad/ledger/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(queueBackend, cacheBackend string) *config.App {
	return &config.App{
		Log:   &config.Log{Format: "text", Prefix: "[ledger]"},
		DB:    &config.DB{},
		Redis: &config.Redis{URL: "redis://localhost:6379/0", PoolSize: 3, DialTimeout: time.Second},
		Kafka: &config.Kafka{},
		Queue: &config.Queue{
			Backend:         queueBackend,
			Workers:         2,
			BufferSize:      8,
			MaxRetries:      1,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
		},
		Cache:   &config.Cache{Backend: cacheBackend, TTL: time.Minute},
		Metrics: &config.Metrics{},
	}
}

func TestNewQueueBackends(t *testing.T) {
	logger := testutils.DiscardLogger()

	q, err := NewQueue(testConfig(config.QueueInline, config.CacheMemory), nil, logger, nil)
	require.NoError(t, err)
	assert.IsType(t, &infra_queue.InlineQueue{}, q)

	q, err = NewQueue(testConfig(config.QueueMemory, config.CacheMemory), nil, logger, nil)
	require.NoError(t, err)
	assert.IsType(t, &infra_queue.MemoryQueue{}, q)
	require.NoError(t, q.Close())

	_, err = NewQueue(testConfig(config.QueueRedis, config.CacheMemory), nil, logger, nil)
	assert.Error(t, err, "redis queue without a client")

	_, err = NewQueue(testConfig("smoke-signals", config.CacheMemory), nil, logger, nil)
	assert.ErrorContains(t, err, "smoke-signals")
}

func TestNewCacheFallsBackToMemory(t *testing.T) {
	cfg := testConfig(config.QueueInline, config.CacheRedis)
	c := NewCache(cfg.Cache, nil, testutils.DiscardLogger())
	assert.IsType(t, &infra_cache.MemoryCache{}, c)

	client, err := NewRedisClient(cfg.Redis)
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck
	c = NewCache(cfg.Cache, client, testutils.DiscardLogger())
	assert.IsType(t, &infra_cache.RedisCache{}, c)
}

func TestNewRedisClientAppliesPoolSettings(t *testing.T) {
	client, err := NewRedisClient(&config.Redis{
		URL:          "redis://localhost:6380/2",
		PoolSize:     7,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck
	opt := client.Options()
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 7, opt.PoolSize)
	assert.Equal(t, 2*time.Second, opt.DialTimeout)

	_, err = NewRedisClient(&config.Redis{URL: "http://nope"})
	assert.Error(t, err)
}

func TestInitializeDependenciesNeedsDatabase(t *testing.T) {
	_, err := InitializeDependencies(testConfig(config.QueueInline, config.CacheMemory))
	assert.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := newLogger(&buf, &config.Log{Format: "json", Prefix: "[ledger]"})
	logger.Info("balance recalculated", "account_id", "acc-1")
	assert.Contains(t, buf.String(), "account_id")
	assert.Contains(t, buf.String(), "acc-1")
	assert.Same(t, logger, slog.Default())

	for _, format := range []string{"text", "logfmt", "unknown"} {
		buf.Reset()
		newLogger(&buf, &config.Log{Format: format}).Warn("queue lagging")
		assert.Contains(t, buf.String(), "queue lagging", format)
	}
}
