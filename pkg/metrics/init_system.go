package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *Registry) initSystemMetrics() {
	r.UptimeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plc_uptime_seconds",
		Help: "Process uptime",
	})

	r.GoRoutines = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plc_goroutines",
		Help: "Current goroutine count",
	})

	r.registry.MustRegister(
		r.UptimeSeconds,
		r.GoRoutines,
	)
}
