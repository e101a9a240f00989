package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job save outcomes.
const (
	OutcomeScheduled = "scheduled"
	OutcomeSaved     = "saved"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

var (
	// HTTP request duration (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Job detail saves by outcome
	JobSaveCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_save_total",
			Help: "Total number of job detail saves by outcome",
		},
		[]string{"outcome"}, // scheduled, saved, rejected, failed
	)

	// Scheduling gate rejections by reason
	SchedulingRejectionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_rejection_total",
			Help: "Total number of job saves refused by the scheduling gate",
		},
		[]string{"reason"},
	)

	// Deposit written on each successful save (dollars)
	JobDepositAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "job_deposit_amount_dollars",
			Help:    "Deposit amount written on job save",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // $100 to ~$51k
		},
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementJobSave counts a job save with the given outcome.
func IncrementJobSave(outcome string) {
	JobSaveCount.WithLabelValues(outcome).Inc()
}

// IncrementSchedulingRejection counts a gate rejection.
func IncrementSchedulingRejection(reason string) {
	SchedulingRejectionCount.WithLabelValues(reason).Inc()
}

// ObserveDeposit records a deposit amount written to a job.
func ObserveDeposit(amount float64) {
	JobDepositAmount.Observe(amount)
}
