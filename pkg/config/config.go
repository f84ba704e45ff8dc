package config

import (
	"fmt"
	"time"
)

// DB configures the postgres pool.
type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"ledger:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type Kafka struct {
	Brokers       string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic         string `envconfig:"TOPIC" default:"ledger.balance-jobs"`
	GroupID       string `envconfig:"GROUP_ID" default:"ledger-worker"`
	SASLUsername  string `envconfig:"SASL_USERNAME"`
	SASLPassword  string `envconfig:"SASL_PASSWORD"`
	TLSEnabled    bool   `envconfig:"TLS_ENABLED" default:"false"`
	TLSCAFile     string `envconfig:"TLS_CA_FILE"`
	TLSSkipVerify bool   `envconfig:"TLS_SKIP_VERIFY" default:"false"`
}

// Queue selects and tunes the balance job backend.
type Queue struct {
	Backend         string        `envconfig:"BACKEND" default:"memory"`
	Workers         int           `envconfig:"WORKERS" default:"4"`
	BufferSize      int           `envconfig:"BUFFER_SIZE" default:"256"`
	MaxRetries      uint64        `envconfig:"MAX_RETRIES" default:"5"`
	InitialInterval time.Duration `envconfig:"INITIAL_INTERVAL" default:"200ms"`
	MaxInterval     time.Duration `envconfig:"MAX_INTERVAL" default:"10s"`
	// Redis Streams only.
	Stream       string        `envconfig:"STREAM" default:"ledger:balance-jobs"`
	Group        string        `envconfig:"GROUP" default:"ledger-worker"`
	Consumer     string        `envconfig:"CONSUMER"`
	Block        time.Duration `envconfig:"BLOCK" default:"2s"`
	ClaimMinIdle time.Duration `envconfig:"CLAIM_MIN_IDLE" default:"1m"`
}

// Cache selects the budget summary cache.
type Cache struct {
	Backend string        `envconfig:"BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"TTL" default:"15m"`
	Prefix  string        `envconfig:"PREFIX" default:"ledger:"`
}

type Metrics struct {
	Addr string `envconfig:"ADDR" default:":9090"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[ledger]"`
}

type App struct {
	Env     string   `envconfig:"APP_ENV" default:"development"`
	Log     *Log     `envconfig:"LOG"`
	DB      *DB      `envconfig:"DATABASE"`
	Redis   *Redis   `envconfig:"REDIS"`
	Kafka   *Kafka   `envconfig:"KAFKA"`
	Queue   *Queue   `envconfig:"QUEUE"`
	Cache   *Cache   `envconfig:"CACHE"`
	Metrics *Metrics `envconfig:"METRICS"`
}

// Queue backends.
const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
	QueueKafka  = "kafka"
	QueueInline = "inline"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

func (a *App) validate() error {
	switch a.Queue.Backend {
	case QueueMemory, QueueRedis, QueueKafka, QueueInline:
	default:
		return fmt.Errorf("config: unknown QUEUE_BACKEND %q", a.Queue.Backend)
	}
	switch a.Cache.Backend {
	case CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q", a.Cache.Backend)
	}
	if a.Queue.Workers < 1 {
		return fmt.Errorf("config: QUEUE_WORKERS must be positive, got %d", a.Queue.Workers)
	}
	return nil
}
