package transport

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
	"github.com/dd0wney/plcnet/pkg/tags"
)

// DefaultBroadcastInterval is the snapshot publish cadence.
const DefaultBroadcastInterval = 50 * time.Millisecond

// SnapshotPublisher periodically broadcasts the PLC's tag table on a PUB
// socket, independent of the main loop's iteration cadence. Each cycle takes
// a locked snapshot, so subscribers never see a value mid-update. Frames are
// snappy-compressed JSON under SnapshotTopic.
type SnapshotPublisher struct {
	factory  SocketFactory
	store    *tags.Store
	addr     string
	interval time.Duration
	logger   logging.Logger
	metrics  *metrics.Registry

	sock      ListenSocket
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewSnapshotPublisher creates a publisher broadcasting store's snapshot on
// addr. A non-positive interval falls back to DefaultBroadcastInterval.
func NewSnapshotPublisher(factory SocketFactory, store *tags.Store, addr string, interval time.Duration, logger logging.Logger) *SnapshotPublisher {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SnapshotPublisher{
		factory:  factory,
		store:    store,
		addr:     addr,
		interval: interval,
		logger:   logger.With(logging.Component("broadcast")),
		stopCh:   make(chan struct{}),
	}
}

// SetMetrics attaches a metrics registry; completed broadcast cycles are
// counted. Nil leaves the publisher unmetered.
func (p *SnapshotPublisher) SetMetrics(reg *metrics.Registry) {
	p.metrics = reg
}

// Start binds the PUB socket and launches the broadcast loop.
func (p *SnapshotPublisher) Start() error {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if p.running {
		return fmt.Errorf("snapshot publisher already running")
	}

	sock, err := p.factory.NewPubSocket()
	if err != nil {
		return fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(p.addr); err != nil {
		sock.Close()
		return fmt.Errorf("failed to bind publisher to %s: %w", p.addr, err)
	}
	p.sock = sock
	p.running = true

	p.wg.Add(1)
	go p.broadcast()

	p.logger.Info("snapshot publisher bound", logging.Addr(p.addr))
	return nil
}

// Stop terminates the broadcast loop and closes the socket.
func (p *SnapshotPublisher) Stop() error {
	p.runningMu.Lock()
	defer p.runningMu.Unlock()

	if !p.running {
		return nil
	}
	close(p.stopCh)
	p.running = false

	p.wg.Wait()

	if err := p.sock.Close(); err != nil {
		p.logger.Warn("failed to close publisher socket", logging.Error(err))
	}
	p.logger.Info("snapshot publisher stopped")
	return nil
}

func (p *SnapshotPublisher) broadcast() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.publishOnce(); err != nil {
				p.logger.Warn("broadcast cycle failed", logging.Error(err))
			}
		}
	}
}

func (p *SnapshotPublisher) publishOnce() error {
	frame, err := EncodeSnapshot(p.store)
	if err != nil {
		return err
	}
	if err := p.sock.Send(frame); err != nil {
		return err
	}
	if p.metrics != nil {
		p.metrics.RecordBroadcastCycle()
	}
	return nil
}

// EncodeSnapshot renders a store's current snapshot as a wire frame:
// topic prefix + snappy-compressed JSON.
func EncodeSnapshot(store *tags.Store) ([]byte, error) {
	snap := store.Snapshot()

	frame := SnapshotFrame{
		PLC:     store.PLC(),
		SentAt:  time.Now().UTC(),
		Samples: make([]TagSample, 0, len(snap)),
	}
	for _, tv := range snap {
		frame.Samples = append(frame.Samples, TagSample{
			Name:  tv.Tag.Name,
			Index: tv.Tag.Index,
			Kind:  tv.Kind.String(),
			Value: FormatValue(tv.Value),
		})
	}

	payload, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	compressed := snappy.Encode(nil, payload)
	return append(append([]byte{}, SnapshotTopic...), compressed...), nil
}

// DecodeSnapshot parses a wire frame produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*SnapshotFrame, error) {
	if len(data) < len(SnapshotTopic) || string(data[:len(SnapshotTopic)]) != string(SnapshotTopic) {
		return nil, fmt.Errorf("frame missing snapshot topic")
	}

	payload, err := snappy.Decode(nil, data[len(SnapshotTopic):])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var frame SnapshotFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &frame, nil
}
