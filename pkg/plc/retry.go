package plc

import (
	"errors"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
)

// ErrRetryExhausted means the consecutive read-failure ceiling was reached.
// The runtime treats it as fatal: the process exits without flushing
// telemetry, on the grounds that a PLC that cannot see its process variables
// must not keep pretending to run.
var ErrRetryExhausted = errors.New("consecutive read failures exceeded retry ceiling")

// retrier tracks consecutive transient failures against a hard ceiling.
// Any success resets the count; only an unbroken run of failures aborts.
type retrier struct {
	ceiling     int
	consecutive int
	metrics     *metrics.Registry
	logger      logging.Logger
}

func newRetrier(ceiling int, reg *metrics.Registry, logger logging.Logger) *retrier {
	if ceiling <= 0 {
		ceiling = 100
	}
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &retrier{ceiling: ceiling, metrics: reg, logger: logger}
}

// failure records one failed attempt. Returns ErrRetryExhausted once the
// ceiling is reached; nil while retrying is still allowed.
func (r *retrier) failure(cause error) error {
	r.consecutive++
	r.metrics.RecordRetry(r.consecutive)

	if r.consecutive >= r.ceiling {
		r.logger.Error("aborting process",
			logging.Retries(r.consecutive),
			logging.Error(cause))
		return ErrRetryExhausted
	}

	r.logger.Warn("read failed, retrying",
		logging.Retries(r.consecutive),
		logging.Error(cause))
	return nil
}

// success resets the consecutive count.
func (r *retrier) success() {
	if r.consecutive > 0 {
		r.metrics.ResetRetries()
	}
	r.consecutive = 0
}
