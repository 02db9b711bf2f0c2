// Package metrics collects Prometheus metrics for the network use cases.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Recorder is what use cases depend on.
type Recorder interface {
	ObserveOperation(op, outcome string, d time.Duration)
	RecordDegradedPeriod(period string)
	RecordCacheLookup(name string, hit bool)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	operations      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	degradedPeriods *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superleader_operations_total",
			Help: "Use case invocations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "superleader_operation_duration_seconds",
			Help:    "Use case latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		degradedPeriods: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superleader_activity_degraded_periods_total",
			Help: "Activity periods returned as zeros after an aggregation failure.",
		}, []string{"period"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "superleader_cache_lookups_total",
			Help: "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
	}

	reg.MustRegister(c.operations, c.duration, c.degradedPeriods, c.cacheLookups)
	return c
}

func (c *Collector) ObserveOperation(op, outcome string, d time.Duration) {
	c.operations.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (c *Collector) RecordDegradedPeriod(period string) {
	c.degradedPeriods.WithLabelValues(period).Inc()
}

func (c *Collector) RecordCacheLookup(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(name, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards all observations.
type Nop struct{}

func (Nop) ObserveOperation(string, string, time.Duration) {}
func (Nop) RecordDegradedPeriod(string)                    {}
func (Nop) RecordCacheLookup(string, bool)                 {}
