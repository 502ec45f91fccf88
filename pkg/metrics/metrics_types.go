package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for one PLC process
type Registry struct {
	// Iteration Metrics
	IterationsTotal      prometheus.Counter
	IterationDuration    prometheus.Histogram
	BarrierWaitDuration  prometheus.Histogram
	MasterClock          prometheus.Gauge

	// Tag Metrics
	TagReadsTotal   *prometheus.CounterVec
	TagWritesTotal  *prometheus.CounterVec
	TagReadRetries  prometheus.Counter
	RetryCounter    prometheus.Gauge
	RulesFiredTotal *prometheus.CounterVec

	// Transport Metrics
	TagRequestsServedTotal  *prometheus.CounterVec
	BroadcastCyclesTotal    prometheus.Counter
	RemoteReadDuration      prometheus.Histogram

	// System Metrics
	UptimeSeconds prometheus.Gauge
	GoRoutines    prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initIterationMetrics()
	r.initTagMetrics()
	r.initTransportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
