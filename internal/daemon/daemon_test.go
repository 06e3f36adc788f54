package daemon_test

import (
	"context"
	"testing"

	"cymap/internal/daemon"
	"cymap/internal/logging"
	"cymap/internal/testsupport"
)

func TestDaemonSingleInstanceLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()

	first, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("second instance should fail to acquire the lock")
	}

	first.Stop()
	if first.Running() {
		t.Fatal("daemon should report stopped")
	}

	// Lock released; a new instance can start.
	if err := second.Start(ctx); err != nil {
		t.Fatalf("restart after release: %v", err)
	}
	second.Stop()
}

func TestDaemonStartIsIdempotentGuarded(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}
	d.Stop()
	d.Stop() // safe to call again
}
