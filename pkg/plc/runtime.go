package plc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/plcnet/pkg/barrier"
	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
	"github.com/dd0wney/plcnet/pkg/rules"
	"github.com/dd0wney/plcnet/pkg/syncstate"
	"github.com/dd0wney/plcnet/pkg/tags"
	"github.com/dd0wney/plcnet/pkg/telemetry"
	"github.com/dd0wney/plcnet/pkg/topology"
	"github.com/dd0wney/plcnet/pkg/transport"
)

// Options carries the injectable collaborators of a Runtime.
type Options struct {
	Factory    transport.SocketFactory
	SyncStore  syncstate.Store
	Registry   *metrics.Registry
	Logger     logging.Logger
	ShutdownCh <-chan struct{}
}

// Runtime is one PLC process. It owns the tag store, answers peer reads,
// broadcasts snapshots, and runs the lock-step control loop against the
// shared sync store.
type Runtime struct {
	desc *topology.PLCDescriptor
	topo *topology.Topology
	cfg  topology.RuntimeConfig

	store     *tags.Store
	syncStore syncstate.Store
	barrier   *barrier.Barrier
	resolver  *Resolver
	engine    *rules.Engine
	recorder  *telemetry.Recorder
	retry     *retrier

	tagServer *transport.TagServer
	publisher *transport.SnapshotPublisher

	metrics    *metrics.Registry
	logger     logging.Logger
	shutdownCh <-chan struct{}
	startTime  time.Time
}

// NewRuntime builds the runtime for the PLC at index in the topology.
func NewRuntime(topo *topology.Topology, index int, cfg topology.RuntimeConfig, opts Options) (*Runtime, error) {
	if index < 0 || index >= len(topo.PLCs) {
		return nil, fmt.Errorf("plc index %d out of range (topology has %d plcs)", index, len(topo.PLCs))
	}
	if opts.Factory == nil {
		return nil, fmt.Errorf("socket factory is required")
	}
	if opts.SyncStore == nil {
		return nil, fmt.Errorf("sync store is required")
	}

	desc := &topo.PLCs[index]

	reg := opts.Registry
	if reg == nil {
		reg = metrics.DefaultRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.PLC(desc.Name))

	store := tags.NewStore(desc.Name, desc.Sensors, desc.Actuators)

	controls, err := rules.ControlsFromConfig(desc.Controls)
	if err != nil {
		return nil, fmt.Errorf("plc %s: %w", desc.Name, err)
	}
	attacks, err := rules.AttacksFromConfig(desc.Attacks)
	if err != nil {
		return nil, fmt.Errorf("plc %s: %w", desc.Name, err)
	}

	engine := rules.NewEngine(controls, attacks, logger)
	engine.SetMetrics(reg)

	client := transport.NewTagClient(opts.Factory, 0)

	tagServer := transport.NewTagServer(opts.Factory, store, desc.PublicAddress, logger)
	tagServer.SetMetrics(reg)
	publisher := transport.NewSnapshotPublisher(opts.Factory, store, desc.LocalAddress, cfg.BroadcastInterval, logger)
	publisher.SetMetrics(reg)

	return &Runtime{
		desc:       desc,
		topo:       topo,
		cfg:        cfg,
		store:      store,
		syncStore:  opts.SyncStore,
		barrier:    barrier.New(opts.SyncStore, desc.Name, cfg.PollInterval),
		resolver:   NewResolver(store, topo, index, client, reg, logger),
		engine:     engine,
		recorder:   telemetry.NewRecorder(desc.Name, desc.PrimarySensor()),
		retry:      newRetrier(cfg.RetryCeiling, reg, logger),
		tagServer:  tagServer,
		publisher:  publisher,
		metrics:    reg,
		logger:     logger,
		shutdownCh: opts.ShutdownCh,
	}, nil
}

// Store exposes the runtime's tag store, mainly for tests and the command
// wiring.
func (r *Runtime) Store() *tags.Store {
	return r.store
}

// Recorder exposes the telemetry buffer.
func (r *Runtime) Recorder() *telemetry.Recorder {
	return r.recorder
}

// ruleContext adapts the runtime to the rule engine's view: reads resolve
// through the topology, writes land on the local store, the clock comes from
// the shared sync store.
type ruleContext struct {
	ctx context.Context
	rt  *Runtime
}

func (c *ruleContext) ReadTag(name string) (float64, error) {
	return c.rt.resolver.Read(c.ctx, name)
}

func (c *ruleContext) WriteTag(name string, value any) error {
	return c.rt.resolver.Write(name, value)
}

func (c *ruleContext) Clock() (int64, error) {
	return c.rt.barrier.MasterClock(c.ctx)
}

// PreLoop runs the one-time setup before the first iteration: register this
// PLC's sync flag, seed owned tags with their configured initial values, and
// bring up the tag server and the snapshot broadcast.
func (r *Runtime) PreLoop(ctx context.Context) error {
	r.startTime = time.Now()

	if err := r.syncStore.EnsurePLC(ctx, r.desc.Name, false); err != nil {
		return fmt.Errorf("failed to register sync flag: %w", err)
	}

	for name, value := range r.desc.InitialValues {
		if err := r.store.Seed(tags.NewTag(name), value); err != nil {
			return fmt.Errorf("failed to seed initial value: %w", err)
		}
	}

	if err := r.tagServer.Start(); err != nil {
		return err
	}
	if err := r.publisher.Start(); err != nil {
		r.tagServer.Stop()
		return err
	}

	r.logger.Info("pre-loop complete",
		logging.Int("sensors", len(r.desc.Sensors)),
		logging.Int("actuators", len(r.desc.Actuators)),
		logging.Int("controls", r.engine.ControlCount()),
		logging.Int("attacks", r.engine.AttackCount()))
	return nil
}

// MainLoop runs iterations until shutdown, context cancellation, or a fatal
// retry abort. Each iteration: wait for the simulator's release, read the
// primary sensor, record it, apply controls then attacks, signal done.
func (r *Runtime) MainLoop(ctx context.Context) error {
	// Fold the shutdown channel into the context so a signal also interrupts
	// a loop parked at the barrier.
	if r.shutdownCh != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-r.shutdownCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			if r.shuttingDown() {
				r.logger.Info("main loop stopping")
				return nil
			}
			return ctx.Err()
		default:
		}

		waitStart := time.Now()
		if err := r.barrier.WaitForRelease(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if r.shuttingDown() {
					r.logger.Info("main loop stopping")
					return nil
				}
				return err
			}
			if fatal := r.retry.failure(err); fatal != nil {
				return fatal
			}
			continue
		}
		barrierWait := time.Since(waitStart)
		iterStart := time.Now()

		var clock int64
		err := r.withRetry(ctx, func() error {
			var err error
			clock, err = r.barrier.MasterClock(ctx)
			return err
		})
		if err != nil {
			return r.loopErr(err)
		}

		if sensor := r.desc.PrimarySensor(); sensor != "" {
			var value float64
			err := r.withRetry(ctx, func() error {
				var err error
				value, err = r.resolver.Read(ctx, sensor)
				return err
			})
			if err != nil {
				return r.loopErr(err)
			}
			r.recorder.Record(clock, value)
		}

		if err := r.withRetry(ctx, func() error {
			return r.engine.Apply(&ruleContext{ctx: ctx, rt: r})
		}); err != nil {
			return r.loopErr(err)
		}

		if err := r.withRetry(ctx, func() error {
			return r.barrier.SignalDone(ctx)
		}); err != nil {
			return r.loopErr(err)
		}

		r.metrics.RecordIteration(time.Since(iterStart), barrierWait, clock)
		r.metrics.UpdateSystemMetrics(r.startTime)
		r.logger.Debug("iteration complete", logging.Iteration(clock))

		if r.cfg.TestBreak {
			return nil
		}
	}
}

// loopErr maps a cancellation caused by shutdown to a clean exit.
func (r *Runtime) loopErr(err error) error {
	if r.shuttingDown() && errors.Is(err, context.Canceled) {
		r.logger.Info("main loop stopping")
		return nil
	}
	return err
}

func (r *Runtime) shuttingDown() bool {
	if r.shutdownCh == nil {
		return false
	}
	select {
	case <-r.shutdownCh:
		return true
	default:
		return false
	}
}

// withRetry runs fn until it succeeds or the consecutive-failure ceiling is
// reached, sleeping one poll interval between attempts. Configuration errors
// (unknown tag, invalid control value) are not transient and propagate
// immediately without touching the counter.
func (r *Runtime) withRetry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if err == nil {
			r.retry.success()
			return nil
		}
		if tags.IsNotFound(err) || tags.IsInvalidValue(err) {
			return err
		}
		if fatal := r.retry.failure(err); fatal != nil {
			return fatal
		}

		interval := r.cfg.PollInterval
		if interval <= 0 {
			interval = barrier.DefaultPollInterval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Shutdown tears the runtime down: the broadcast loop and tag server are
// joined and closed, then the telemetry buffer is flushed unless loopErr is a
// fatal retry abort (fail-fast keeps the artifact unwritten on abort).
func (r *Runtime) Shutdown(loopErr error) error {
	if err := r.publisher.Stop(); err != nil {
		r.logger.Warn("failed to stop snapshot publisher", logging.Error(err))
	}
	if err := r.tagServer.Stop(); err != nil {
		r.logger.Warn("failed to stop tag server", logging.Error(err))
	}

	if errors.Is(loopErr, ErrRetryExhausted) {
		r.logger.Error("skipping telemetry flush after fatal abort")
		return loopErr
	}

	if r.recorder.Len() > 0 {
		path, err := r.recorder.WriteCSV(r.cfg.OutputDir)
		if err != nil {
			r.logger.Error("failed to write telemetry artifact", logging.Error(err))
			return err
		}
		r.logger.Info("telemetry artifact written",
			logging.String("path", path),
			logging.Int("rows", r.recorder.Len()))
	}
	return nil
}
