// Package metrics exposes Prometheus collectors for background work.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ledger"

// Metrics groups the collectors recorded by the queue, recalculator,
// recurrence generator and cache invalidator.
type Metrics struct {
	JobsProcessed      *prometheus.CounterVec
	JobDuration        *prometheus.HistogramVec
	JobsDeadLettered   *prometheus.CounterVec
	BalanceMismatches  *prometheus.CounterVec
	RecurrenceRuns     *prometheus.CounterVec
	OccurrencesCreated prometheus.Counter
	Invalidations      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_jobs_processed_total",
			Help:      "Balance jobs handled, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "balance_job_duration_seconds",
			Help:      "Time spent recomputing balances.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		JobsDeadLettered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_jobs_dead_lettered_total",
			Help:      "Balance jobs given up on after exhausting retries.",
		}, []string{"backend"}),
		BalanceMismatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_mismatches_total",
			Help:      "Derived balances found disagreeing with the ledger.",
		}, []string{"field"}),
		RecurrenceRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurrence_series_total",
			Help:      "Series processed by the recurrence generator, by outcome.",
		}, []string{"outcome"}),
		OccurrencesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurrence_occurrences_created_total",
			Help:      "Obligation occurrences materialized from series.",
		}),
		Invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_cache_invalidations_total",
			Help:      "Budget summary cache invalidations, by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.JobsProcessed, m.JobDuration, m.JobsDeadLettered, m.BalanceMismatches,
			m.RecurrenceRuns, m.OccurrencesCreated, m.Invalidations,
		)
	}
	return m
}

// ObserveJob records one handled job.
func (m *Metrics) ObserveJob(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.JobsProcessed.WithLabelValues(kind, outcome).Inc()
	m.JobDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// DeadLetter records a job that exhausted its retries.
func (m *Metrics) DeadLetter(backend string) {
	if m == nil {
		return
	}
	m.JobsDeadLettered.WithLabelValues(backend).Inc()
}

// Mismatch records a derived field found inconsistent.
func (m *Metrics) Mismatch(field string) {
	if m == nil {
		return
	}
	m.BalanceMismatches.WithLabelValues(field).Inc()
}

// Series records one processed series and the occurrences it produced.
func (m *Metrics) Series(err error, generated int) {
	if m == nil {
		return
	}
	if err != nil {
		m.RecurrenceRuns.WithLabelValues("failed").Inc()
		return
	}
	m.RecurrenceRuns.WithLabelValues("ok").Inc()
	m.OccurrencesCreated.Add(float64(generated))
}

// Invalidation records one cache invalidation attempt.
func (m *Metrics) Invalidation(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Invalidations.WithLabelValues("failed").Inc()
		return
	}
	m.Invalidations.WithLabelValues("ok").Inc()
}
