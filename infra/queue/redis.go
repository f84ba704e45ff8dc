package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis Streams queue.
type RedisConfig struct {
	Stream       string
	Group        string
	Consumer     string
	Block        time.Duration
	// ClaimMinIdle is how long an unacknowledged entry must sit before Start
	// claims it for this consumer.
	ClaimMinIdle time.Duration
	Retry        RetryConfig
}

// RedisQueue delivers jobs through a Redis stream and consumer group.
// Failed jobs are copied to the "<stream>-DLQ" stream.
type RedisQueue struct {
	client     *redis.Client
	ownsClient bool
	cfg        RedisConfig
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisFromURL connects to url and creates the queue.
func NewRedisFromURL(url string, cfg RedisConfig, logger *slog.Logger, m *metrics.Metrics) (*RedisQueue, error) {
	if url == "" {
		return nil, fmt.Errorf("redis queue: url is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis queue: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis queue: connection failed: %w", err)
	}
	q, err := NewRedis(client, cfg, logger, m)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	q.ownsClient = true
	return q, nil
}

// NewRedis creates the queue over an existing client and makes sure the
// stream and consumer group exist.
func NewRedis(client *redis.Client, cfg RedisConfig, logger *slog.Logger, m *metrics.Metrics) (*RedisQueue, error) {
	if cfg.Stream == "" {
		cfg.Stream = "ledger:balance-jobs"
	}
	if cfg.Group == "" {
		cfg.Group = "balance-workers"
	}
	if cfg.Consumer == "" {
		cfg.Consumer = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if cfg.Block <= 0 {
		cfg.Block = 2 * time.Second
	}
	if cfg.ClaimMinIdle <= 0 {
		cfg.ClaimMinIdle = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	err := client.XGroupCreateMkStream(context.Background(), cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("redis queue: create group: %w", err)
	}
	return &RedisQueue{
		client:  client,
		cfg:     cfg,
		logger:  logger.With("queue", "redis", "stream", cfg.Stream),
		metrics: m,
	}, nil
}

// Publish appends the job to the stream.
func (q *RedisQueue) Publish(ctx context.Context, job queue.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("redis queue: marshal failed: %w", err)
	}
	err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.cfg.Stream,
		Values: map[string]any{"job": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis queue: publish failed: %w", err)
	}
	q.logger.Debug("job published", "job_id", job.ID, "kind", job.Kind, "account_id", job.AccountID)
	return nil
}

// Start reads the stream in the background until Stop.
func (q *RedisQueue) Start(ctx context.Context, handler queue.HandlerFunc) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cancel != nil {
		return fmt.Errorf("redis queue: already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.consume(ctx, handler)
	}()
	q.logger.Info("redis queue consumer started", "group", q.cfg.Group, "consumer", q.cfg.Consumer)
	return nil
}

func (q *RedisQueue) consume(ctx context.Context, handler queue.HandlerFunc) {
	q.reclaim(ctx, handler)
	for {
		if ctx.Err() != nil {
			return
		}
		res, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.cfg.Group,
			Consumer: q.cfg.Consumer,
			Streams:  []string{q.cfg.Stream, ">"},
			Count:    10,
			Block:    q.cfg.Block,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			q.logger.Error("error reading from stream", "error", err)
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range res {
			for _, msg := range stream.Messages {
				if ctx.Err() != nil {
					// Left pending for the next consumer to reclaim.
					return
				}
				q.handle(ctx, msg, handler)
			}
		}
	}
}

// reclaim takes over entries another consumer read but never acknowledged,
// once they have been idle for at least ClaimMinIdle.
func (q *RedisQueue) reclaim(ctx context.Context, handler queue.HandlerFunc) {
	start := "0-0"
	for ctx.Err() == nil {
		msgs, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.cfg.Stream,
			Group:    q.cfg.Group,
			Consumer: q.cfg.Consumer,
			MinIdle:  q.cfg.ClaimMinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, redis.Nil) {
				q.logger.Error("failed to reclaim pending messages", "error", err)
			}
			return
		}
		if len(msgs) > 0 {
			q.logger.Info("reclaimed pending messages", "count", len(msgs))
		}
		for _, msg := range msgs {
			if ctx.Err() != nil {
				return
			}
			q.handle(ctx, msg, handler)
		}
		if next == "0-0" || next == "" {
			return
		}
		start = next
	}
}

func (q *RedisQueue) ack(ctx context.Context, id string) {
	if err := q.client.XAck(ctx, q.cfg.Stream, q.cfg.Group, id).Err(); err != nil {
		q.logger.Error("failed to acknowledge message", "error", err, "msg_id", id)
	}
}

func (q *RedisQueue) deadLetter(ctx context.Context, msg redis.XMessage) {
	q.pushToDLQ(ctx, msg.Values)
	q.ack(ctx, msg.ID)
}

func (q *RedisQueue) handle(ctx context.Context, msg redis.XMessage, handler queue.HandlerFunc) {
	ackCtx := context.WithoutCancel(ctx)

	raw, ok := msg.Values["job"].(string)
	if !ok {
		q.logger.Error("message without job payload", "msg_id", msg.ID)
		q.deadLetter(ackCtx, msg)
		return
	}
	var job queue.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil || !job.Kind.IsValid() {
		q.logger.Error("failed to decode job", "error", err, "msg_id", msg.ID)
		q.deadLetter(ackCtx, msg)
		return
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				q.logger.Error("handler panic recovered", "panic", r, "job_id", job.ID)
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		return process(ctx, q.cfg.Retry, handler, job)
	}()
	switch {
	case err == nil:
		q.ack(ackCtx, msg.ID)
	case ctx.Err() != nil:
		// Stopped mid-job: the entry stays pending and is reclaimed on restart.
		q.logger.Warn("job interrupted by shutdown", "job_id", job.ID, "msg_id", msg.ID)
	default:
		q.logger.Error("job failed", "error", err, "job_id", job.ID, "account_id", job.AccountID)
		q.deadLetter(ackCtx, msg)
	}
}

// pushToDLQ copies the raw message to the dead-letter stream.
func (q *RedisQueue) pushToDLQ(ctx context.Context, values map[string]any) {
	dlqStream := q.cfg.Stream + "-DLQ"
	q.metrics.DeadLetter("redis")
	if err := q.client.XAdd(ctx, &redis.XAddArgs{Stream: dlqStream, Values: values}).Err(); err != nil {
		q.logger.Error("failed to push to DLQ", "error", err, "stream", dlqStream)
		return
	}
	q.logger.Warn("job pushed to DLQ", "stream", dlqStream)
}

// Stop ends consumption and waits for the in-flight batch.
func (q *RedisQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	cancel := q.cancel
	q.cancel = nil
	q.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the consumer and closes the client if the queue opened it.
func (q *RedisQueue) Close() error {
	if err := q.Stop(context.Background()); err != nil {
		return err
	}
	if q.ownsClient {
		return q.client.Close()
	}
	return nil
}

var _ queue.Queue = (*RedisQueue)(nil)
