package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirasaad/ledger/pkg/domain"
	"github.com/amirasaad/ledger/pkg/metrics"
	"github.com/amirasaad/ledger/pkg/queue"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(n uint64) RetryConfig {
	return RetryConfig{MaxRetries: n, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
}

func TestMemoryQueueKeepsPerAccountOrder(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 4, BufferSize: 64, Retry: fastRetry(0)}, nil, nil)

	accounts := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	var mu sync.Mutex
	seen := map[uuid.UUID][]uuid.UUID{}
	var handled sync.WaitGroup
	handled.Add(len(accounts) * 20)

	require.NoError(t, q.Start(context.Background(), func(_ context.Context, job queue.Job) error {
		mu.Lock()
		seen[job.AccountID] = append(seen[job.AccountID], job.ID)
		mu.Unlock()
		handled.Done()
		return nil
	}))

	published := map[uuid.UUID][]uuid.UUID{}
	for i := 0; i < 20; i++ {
		for _, acc := range accounts {
			job := queue.NewJob(queue.KindRecalculateRunningBalances, acc)
			published[acc] = append(published[acc], job.ID)
			require.NoError(t, q.Publish(context.Background(), job))
		}
	}

	waitTimeout(t, &handled, 5*time.Second)
	require.NoError(t, q.Stop(context.Background()))

	for _, acc := range accounts {
		assert.Equal(t, published[acc], seen[acc], "jobs for %s out of order", acc)
	}
}

func TestMemoryQueueRetriesThenDeadLetters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	q := NewMemory(MemoryConfig{Workers: 1, Retry: fastRetry(2)}, nil, m)

	var attempts atomic.Int32
	require.NoError(t, q.Start(context.Background(), func(context.Context, queue.Job) error {
		attempts.Add(1)
		return fmt.Errorf("database unavailable")
	}))

	job := queue.NewJob(queue.KindRecalculateBalance, uuid.New())
	require.NoError(t, q.Publish(context.Background(), job))
	require.NoError(t, q.Stop(context.Background()))

	assert.Equal(t, int32(3), attempts.Load())
	dead := q.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, job.ID, dead[0].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsDeadLettered.WithLabelValues("memory")))
}

func TestMemoryQueueDoesNotRetryMissingAccount(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 1, Retry: fastRetry(5)}, nil, nil)

	var attempts atomic.Int32
	require.NoError(t, q.Start(context.Background(), func(context.Context, queue.Job) error {
		attempts.Add(1)
		return fmt.Errorf("account: %w", domain.ErrNotFound)
	}))
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, uuid.New())))
	require.NoError(t, q.Stop(context.Background()))

	assert.Equal(t, int32(1), attempts.Load())
	assert.Len(t, q.DeadLetters(), 1)
}

func TestMemoryQueueRecoversPanics(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 1, Retry: fastRetry(0)}, nil, nil)

	var ok atomic.Int32
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, job queue.Job) error {
		if job.Kind == queue.KindRecalculateBalance {
			panic("boom")
		}
		ok.Add(1)
		return nil
	}))
	acc := uuid.New()
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, acc)))
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateRunningBalances, acc)))
	require.NoError(t, q.Stop(context.Background()))

	assert.Equal(t, int32(1), ok.Load())
	assert.Len(t, q.DeadLetters(), 1)
}

func TestMemoryQueueStopDrainsAndRefuses(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 2, BufferSize: 32, Retry: fastRetry(0)}, nil, nil)

	var handled atomic.Int32
	release := make(chan struct{})
	require.NoError(t, q.Start(context.Background(), func(context.Context, queue.Job) error {
		<-release
		handled.Add(1)
		return nil
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, uuid.New())))
	}

	stopped := make(chan error, 1)
	go func() { stopped <- q.Stop(context.Background()) }()
	close(release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stop did not return")
	}
	assert.Equal(t, int32(10), handled.Load())

	err := q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, uuid.New()))
	require.Error(t, err)
	require.Error(t, q.Start(context.Background(), func(context.Context, queue.Job) error { return nil }))
}

func TestMemoryQueueHandlesBufferedJobsAfterCancel(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 2, BufferSize: 32, Retry: fastRetry(0)}, nil, nil)

	var handled atomic.Int32
	release := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, q.Start(ctx, func(jobCtx context.Context, _ queue.Job) error {
		<-release
		if err := jobCtx.Err(); err != nil {
			return err
		}
		handled.Add(1)
		return nil
	}))
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, uuid.New())))
	}

	cancel()
	close(release)
	require.NoError(t, q.Stop(context.Background()))

	assert.Equal(t, int32(10), handled.Load(), "cancelling the start context must not drop accepted jobs")
	assert.Empty(t, q.DeadLetters())
}

func TestMemoryQueueStopReleasesBlockedPublisher(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 1, BufferSize: 1}, nil, nil)
	acc := uuid.New()
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, acc)))

	published := make(chan error, 1)
	go func() {
		published <- q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, acc))
	}()
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan error, 1)
	go func() { stopped <- q.Stop(context.Background()) }()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stop blocked behind a publisher waiting on a full shard")
	}
	select {
	case err := <-published:
		assert.ErrorIs(t, err, errMemoryClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("publisher was not released")
	}
	assert.Len(t, q.DeadLetters(), 1, "the job accepted before stop is kept as a dead letter")
}

func TestMemoryQueuePublishHonoursContext(t *testing.T) {
	q := NewMemory(MemoryConfig{Workers: 1, BufferSize: 1}, nil, nil)
	acc := uuid.New()
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, acc)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Publish(ctx, queue.NewJob(queue.KindRecalculateBalance, acc))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestInlineQueueRunsOnPublish(t *testing.T) {
	q := NewInline(fastRetry(1), nil)
	job := queue.NewJob(queue.KindRecalculateRunningBalances, uuid.New())

	require.Error(t, q.Publish(context.Background(), job), "publishing before start must fail")

	var got []queue.Job
	require.NoError(t, q.Start(context.Background(), func(_ context.Context, j queue.Job) error {
		got = append(got, j)
		return nil
	}))
	require.NoError(t, q.Publish(context.Background(), job))
	require.Len(t, got, 1)
	assert.Equal(t, job, got[0])

	require.NoError(t, q.Close())
	require.Error(t, q.Publish(context.Background(), job))
}

func TestInlineQueueDeadLettersWithoutFailingPublish(t *testing.T) {
	q := NewInline(fastRetry(2), nil)
	var attempts int
	require.NoError(t, q.Start(context.Background(), func(context.Context, queue.Job) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("transient")
		}
		return nil
	}))
	require.NoError(t, q.Publish(context.Background(), queue.NewJob(queue.KindRecalculateBalance, uuid.New())))
	assert.Equal(t, 3, attempts)

	assert.Empty(t, q.DeadLetters())

	attempts = -10
	job := queue.NewJob(queue.KindRecalculateBalance, uuid.New())
	require.NoError(t, q.Publish(context.Background(), job), "handler failures are not publish failures")
	assert.Equal(t, -7, attempts, "one attempt plus two retries, no more")
	dead := q.DeadLetters()
	require.Len(t, dead, 1)
	assert.Equal(t, job.ID, dead[0].ID)
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs")
	}
}
