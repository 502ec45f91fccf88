package metrics

import "github.com/prometheus/client_golang/prometheus"

func (r *Registry) initTransportMetrics() {
	r.TagRequestsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plc_tag_requests_served_total",
		Help: "Peer tag read requests answered, by status",
	}, []string{"status"})

	r.BroadcastCyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plc_broadcast_cycles_total",
		Help: "Snapshot broadcast cycles completed",
	})

	r.RemoteReadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plc_remote_read_duration_seconds",
		Help:    "Round trip time of remote tag reads",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	r.registry.MustRegister(
		r.TagRequestsServedTotal,
		r.BroadcastCyclesTotal,
		r.RemoteReadDuration,
	)
}
