package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "basebridge"

var (
	// SessionOperations counts state-container operations by name and outcome.
	SessionOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_operations_total",
		Help:      "Session operations by operation and result.",
	}, []string{"operation", "result"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of live in-memory sessions.",
	})

	ExchangeRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "exchange_rate",
		Help:      "Last fetched exchange rate per pair.",
	}, []string{"pair"})

	QuoteRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quote_request_duration_seconds",
		Help:      "Latency of quote source requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"})

	registerOnce sync.Once
)

// MustRegisterMetrics registers the collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SessionOperations, ActiveSessions, ExchangeRate, QuoteRequestDuration)
	})
}

// ObserveOperation records one operation outcome.
func ObserveOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SessionOperations.WithLabelValues(operation, result).Inc()
}
