// Package metrics exposes Prometheus instrumentation for fragment checks and deduplication.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSimilar   = "similar"
	ResultDistinct  = "distinct"
	ResultDuplicate = "duplicate"
	ResultUnique    = "unique"
	ResultError     = "error"
)

var (
	// Fragment Check Metrics
	FragmentChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fragment_checks_total",
			Help: "Total number of fragment similarity checks",
		},
		[]string{"strategy", "result"},
	)

	FragmentCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fragment_check_duration_seconds",
			Help:    "Duration of fragment similarity checks in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"strategy"},
	)

	// Deduplication Metrics
	DedupChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dedup_checks_total",
			Help: "Total number of transcript duplicate checks",
		},
		[]string{"result"}, // "duplicate", "unique", "error"
	)

	DedupBloomHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_bloom_hits_total",
			Help: "Total number of exact duplicates caught by the bloom filter",
		},
	)

	DedupStaleRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_stale_removed_total",
			Help: "Total number of expired transcripts removed from the store",
		},
	)

	DedupStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_store_transcripts",
			Help: "Current number of transcripts held for matching",
		},
	)

	DedupArchiveErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_archive_errors_total",
			Help: "Total number of failed transcript archive uploads",
		},
	)

	// Intake Metrics
	IntakeMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_messages_total",
			Help: "Total number of transcript messages consumed from Kafka",
		},
		[]string{"result"}, // "duplicate", "unique", "error"
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordFragmentCheck records one similarity decision.
func RecordFragmentCheck(strategy string, similar bool, duration time.Duration) {
	result := ResultDistinct
	if similar {
		result = ResultSimilar
	}
	FragmentChecks.WithLabelValues(strategy, result).Inc()
	FragmentCheckDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordDedupCheck records the outcome of a duplicate check.
func RecordDedupCheck(duplicate bool, err error) {
	DedupChecks.WithLabelValues(outcome(duplicate, err)).Inc()
}

// RecordIntakeMessage records the outcome of one consumed message.
func RecordIntakeMessage(duplicate bool, err error) {
	IntakeMessages.WithLabelValues(outcome(duplicate, err)).Inc()
}

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func outcome(duplicate bool, err error) string {
	switch {
	case err != nil:
		return ResultError
	case duplicate:
		return ResultDuplicate
	default:
		return ResultUnique
	}
}
