package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/plcnet/pkg/logging"
)

// Lifecycle coordinates graceful shutdown of a PLC process: it owns the
// shutdown channel the main loop watches, translates SIGINT/SIGTERM into a
// shutdown, and optionally serves the metrics endpoint.
type Lifecycle struct {
	shutdownCh    chan struct{}
	shutdownOnce  sync.Once
	metricsServer *http.Server
	logger        logging.Logger
}

// NewLifecycle creates a lifecycle manager.
func NewLifecycle(logger logging.Logger) *Lifecycle {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Lifecycle{
		shutdownCh: make(chan struct{}),
		logger:     logger.With(logging.Component("lifecycle")),
	}
}

// ServeMetrics starts an HTTP listener exposing the prometheus registry at
// /metrics. Errors after startup only terminate the listener, never the PLC.
func (l *Lifecycle) ServeMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	l.metricsServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		l.logger.Info("metrics listener started", logging.Addr(addr))
		if err := l.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.logger.Warn("metrics listener failed", logging.Error(err))
		}
	}()
}

// HandleSignals listens for OS termination signals and triggers shutdown.
// Runs until the first signal; call it in a goroutine.
func (l *Lifecycle) HandleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,
		syscall.SIGTERM,
	)

	sig := <-sigCh
	l.logger.Info("received signal, starting graceful shutdown",
		logging.String("signal", sig.String()))
	l.Shutdown()
}

// Shutdown initiates a graceful shutdown exactly once.
func (l *Lifecycle) Shutdown() {
	l.shutdownOnce.Do(func() {
		close(l.shutdownCh)

		if l.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.metricsServer.Shutdown(ctx); err != nil {
				l.logger.Warn("metrics listener shutdown error", logging.Error(err))
			}
		}
	})
}

// IsShuttingDown returns true if shutdown has been initiated
func (l *Lifecycle) IsShuttingDown() bool {
	select {
	case <-l.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (l *Lifecycle) ShutdownChannel() <-chan struct{} {
	return l.shutdownCh
}
