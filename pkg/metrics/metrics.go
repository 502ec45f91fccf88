package metrics

import (
	"runtime"
	"time"
)

// RecordIteration records one completed control loop iteration
func (r *Registry) RecordIteration(duration, barrierWait time.Duration, clock int64) {
	r.IterationsTotal.Inc()
	r.IterationDuration.Observe(duration.Seconds())
	r.BarrierWaitDuration.Observe(barrierWait.Seconds())
	r.MasterClock.Set(float64(clock))
}

// RecordTagRead records a tag read with its source and outcome
func (r *Registry) RecordTagRead(source, status string, duration time.Duration) {
	r.TagReadsTotal.WithLabelValues(source, status).Inc()
	if source == "remote" {
		r.RemoteReadDuration.Observe(duration.Seconds())
	}
}

// RecordTagWrite records an actuator write outcome
func (r *Registry) RecordTagWrite(status string) {
	r.TagWritesTotal.WithLabelValues(status).Inc()
}

// RecordRetry records a transient read failure and the current consecutive count
func (r *Registry) RecordRetry(consecutive int) {
	r.TagReadRetries.Inc()
	r.RetryCounter.Set(float64(consecutive))
}

// ResetRetries clears the consecutive failure gauge after a success
func (r *Registry) ResetRetries() {
	r.RetryCounter.Set(0)
}

// RecordRuleFired records a triggered rule by kind ("control" or "attack")
func (r *Registry) RecordRuleFired(kind string) {
	r.RulesFiredTotal.WithLabelValues(kind).Inc()
}

// RecordRequestServed records one answered peer tag request
func (r *Registry) RecordRequestServed(status string) {
	r.TagRequestsServedTotal.WithLabelValues(status).Inc()
}

// RecordBroadcastCycle records one snapshot publish cycle
func (r *Registry) RecordBroadcastCycle() {
	r.BroadcastCyclesTotal.Inc()
}

// UpdateSystemMetrics refreshes process-level gauges
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}
