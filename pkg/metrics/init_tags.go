package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *Registry) initTagMetrics() {
	r.TagReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plc_tag_reads_total",
		Help: "Tag reads by source (local/remote) and status",
	}, []string{"source", "status"})

	r.TagWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plc_tag_writes_total",
		Help: "Actuator writes by status",
	}, []string{"status"})

	r.TagReadRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plc_tag_read_retries_total",
		Help: "Transient read failures absorbed by the retry policy",
	})

	r.RetryCounter = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plc_consecutive_read_failures",
		Help: "Current consecutive read failure count (fatal at the ceiling)",
	})

	r.RulesFiredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plc_rules_fired_total",
		Help: "Rules whose trigger condition held, by kind (control/attack)",
	}, []string{"kind"})

	r.registry.MustRegister(
		r.TagReadsTotal,
		r.TagWritesTotal,
		r.TagReadRetries,
		r.RetryCounter,
		r.RulesFiredTotal,
	)
}
