package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *Registry) initIterationMetrics() {
	r.IterationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plc_iterations_total",
		Help: "Completed control loop iterations",
	})

	r.IterationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plc_iteration_duration_seconds",
		Help:    "Time spent in one control loop iteration (excluding barrier wait)",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	r.BarrierWaitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plc_barrier_wait_duration_seconds",
		Help:    "Time spent blocked on the sync barrier per iteration",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	r.MasterClock = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plc_master_clock",
		Help: "Last observed value of the shared master clock",
	})

	r.registry.MustRegister(
		r.IterationsTotal,
		r.IterationDuration,
		r.BarrierWaitDuration,
		r.MasterClock,
	)
}
