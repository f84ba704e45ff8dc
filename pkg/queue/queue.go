// Package queue defines deferred balance jobs and the substrate that
// delivers them. Delivery is at-least-once; handlers must be idempotent.
package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names the work a job asks for.
type Kind string

// Job kinds.
const (
	// KindRecalculateRunningBalances rewrites every running balance of an
	// account and its stored balance.
	KindRecalculateRunningBalances Kind = "recalculate_running_balances"
	// KindRecalculateBalance rewrites only the account's stored balance.
	KindRecalculateBalance Kind = "recalculate_balance"
)

// IsValid reports whether k is a known job kind.
func (k Kind) IsValid() bool {
	return k == KindRecalculateRunningBalances || k == KindRecalculateBalance
}

// Job asks for a recomputation on one account.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	AccountID  uuid.UUID `json:"account_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewJob builds a job for accountID.
func NewJob(kind Kind, accountID uuid.UUID) Job {
	return Job{
		ID:         uuid.New(),
		Kind:       kind,
		AccountID:  accountID,
		EnqueuedAt: time.Now().UTC(),
	}
}

// HandlerFunc processes one job.
type HandlerFunc func(ctx context.Context, job Job) error

// Publisher enqueues jobs.
type Publisher interface {
	Publish(ctx context.Context, job Job) error
}

// Consumer delivers enqueued jobs to a handler until stopped.
type Consumer interface {
	Start(ctx context.Context, handler HandlerFunc) error
	Stop(ctx context.Context) error
}

// Queue is a publisher and consumer over the same backend.
type Queue interface {
	Publisher
	Consumer
	Close() error
}
