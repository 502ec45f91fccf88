package transport

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/plcnet/pkg/logging"
	"github.com/dd0wney/plcnet/pkg/metrics"
	"github.com/dd0wney/plcnet/pkg/tags"
)

// serveRecvTimeout bounds each Recv so the serve loop can notice Stop.
const serveRecvTimeout = 250 * time.Millisecond

// TagServer answers peer tag reads against a PLC's local store. It runs for
// the lifetime of the process; reads go through the store's lock, so a reply
// never carries a half-written update.
type TagServer struct {
	factory SocketFactory
	store   *tags.Store
	addr    string
	logger  logging.Logger
	metrics *metrics.Registry

	sock      ListenSocket
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex
}

// NewTagServer creates a server for the given store, listening on addr.
func NewTagServer(factory SocketFactory, store *tags.Store, addr string, logger logging.Logger) *TagServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TagServer{
		factory: factory,
		store:   store,
		addr:    addr,
		logger:  logger.With(logging.Component("tag-server")),
		stopCh:  make(chan struct{}),
	}
}

// SetMetrics attaches a metrics registry; served requests are counted by
// status. Nil leaves the server unmetered.
func (s *TagServer) SetMetrics(reg *metrics.Registry) {
	s.metrics = reg
}

// Start binds the reply socket and launches the serve loop.
func (s *TagServer) Start() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		return fmt.Errorf("tag server already running")
	}

	sock, err := s.factory.NewRepSocket()
	if err != nil {
		return fmt.Errorf("failed to create REP socket: %w", err)
	}
	if err := sock.SetRecvDeadline(serveRecvTimeout); err != nil {
		sock.Close()
		return fmt.Errorf("failed to set recv deadline: %w", err)
	}
	if err := sock.Listen(s.addr); err != nil {
		sock.Close()
		return fmt.Errorf("failed to bind tag server to %s: %w", s.addr, err)
	}
	s.sock = sock
	s.running = true

	s.wg.Add(1)
	go s.serve()

	s.logger.Info("tag server listening", logging.Addr(s.addr))
	return nil
}

// Stop shuts the serve loop down and closes the socket.
func (s *TagServer) Stop() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stopCh)
	s.running = false

	s.wg.Wait()

	if err := s.sock.Close(); err != nil {
		s.logger.Warn("failed to close tag server socket", logging.Error(err))
	}
	s.logger.Info("tag server stopped")
	return nil
}

func (s *TagServer) serve() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		// Recv deadline bounds the block; timeouts and transient errors
		// just come back around the stop check.
		data, err := s.sock.Recv()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
			}
			continue
		}

		resp := s.handle(data)
		out, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("failed to marshal response", logging.Error(err))
			continue
		}
		if err := s.sock.Send(out); err != nil {
			s.logger.Warn("reply failed", logging.Error(err))
		}
	}
}

func (s *TagServer) handle(data []byte) TagResponse {
	var req TagRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.served("error")
		return TagResponse{Error: "malformed request"}
	}

	value, err := s.store.Get(tags.Tag{Name: req.Tag, Index: req.Index})
	if err != nil {
		s.logger.Debug("tag read refused",
			logging.TagName(req.Tag),
			logging.Error(err))
		s.served("error")
		return TagResponse{
			RequestID: req.RequestID,
			Found:     false,
			Error:     err.Error(),
		}
	}

	s.served("ok")
	return TagResponse{
		RequestID: req.RequestID,
		Value:     FormatValue(value),
		Found:     true,
	}
}

func (s *TagServer) served(status string) {
	if s.metrics != nil {
		s.metrics.RecordRequestServed(status)
	}
}
