package server

import (
	"syscall"
	"testing"
	"time"

	"github.com/dd0wney/plcnet/pkg/logging"
)

func TestShutdownClosesChannel(t *testing.T) {
	l := NewLifecycle(logging.NewNopLogger())

	if l.IsShuttingDown() {
		t.Fatal("fresh lifecycle should not be shutting down")
	}

	l.Shutdown()

	select {
	case <-l.ShutdownChannel():
	default:
		t.Error("shutdown channel not closed after Shutdown")
	}
	if !l.IsShuttingDown() {
		t.Error("IsShuttingDown should be true after Shutdown")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	l := NewLifecycle(nil)
	l.Shutdown()
	// A second call must not panic on the closed channel
	l.Shutdown()
}

func TestSignalTriggersShutdown(t *testing.T) {
	l := NewLifecycle(logging.NewNopLogger())

	go l.HandleSignals()
	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("failed to send SIGTERM: %v", err)
	}

	select {
	case <-l.ShutdownChannel():
	case <-time.After(2 * time.Second):
		t.Fatal("SIGTERM did not trigger shutdown")
	}
}
