// Package queue implements the balance job substrate: an in-process
// sharded queue, Redis Streams, Kafka, and an inline queue for tools.
package queue

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/cenkalti/backoff/v4"
)

// RetryConfig bounds how hard a job is retried before it is dead-lettered.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     10 * time.Second,
	}
}

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if c.InitialInterval > 0 {
		b.InitialInterval = c.InitialInterval
	}
	if c.MaxInterval > 0 {
		b.MaxInterval = c.MaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx)
}

// process runs handler with retries. Missing accounts are not retried.
func process(ctx context.Context, cfg RetryConfig, handler queue.HandlerFunc, job queue.Job) error {
	return backoff.Retry(func() error {
		err := handler(ctx, job)
		if err != nil && errors.Is(err, domain.ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, cfg.backOff(ctx))
}
