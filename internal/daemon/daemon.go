package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"cymap/internal/config"
	"cymap/internal/ledger"
	"cymap/internal/locations"
	"cymap/internal/logging"
	"cymap/internal/media"
	"cymap/internal/scanner"
	"cymap/internal/server"
	"cymap/internal/services/whisper"
	"cymap/internal/state"
	"cymap/internal/transcripts"
	"cymap/internal/worker"
)

// Daemon composes the scanner, the transcription worker, the location
// poller, and the dashboard server into a single lifecycle, with
// flock-based locking to prevent multiple instances from contending over
// the shared state documents.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	scanner *scanner.Scanner
	worker  *worker.Worker
	poller  *locations.Poller
	server  *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with all collaborators wired from the config.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	states := state.NewStore(cfg.Paths.StatesDir, logger)
	ts := transcripts.NewStore(cfg.Paths.TranscriptDir, logger)
	led := ledger.New(cfg.Paths.QueueFile, logger)

	d := &Daemon{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		scanner: scanner.New(cfg, states, led, ts, logger),
		worker: worker.New(cfg, states, ts,
			media.NewPreparer(cfg),
			whisper.NewService(cfg),
			logger,
		),
		server: server.New(cfg, ts, locations.NewReader(cfg.Paths.LocationDir), logger),
	}
	if cfg.Locations.Enabled {
		d.poller = locations.NewPoller(cfg, logger)
	}

	d.lockPath = filepath.Join(cfg.Paths.LogDir, "cymapd.lock")
	d.lock = flock.New(d.lockPath)
	return d, nil
}

// Start acquires the instance lock and launches every service. It returns
// once the services are running; cancel the context or call Stop to shut
// down.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cymap daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	if err := d.server.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		d.cancel = nil
		return err
	}

	d.launch(runCtx, "scanner", d.scanner.Run)
	d.launch(runCtx, "worker", d.worker.Run)
	if d.poller != nil {
		d.launch(runCtx, "locations", d.poller.Run)
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) launch(ctx context.Context, name string, run func(context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := run(ctx); err != nil {
			d.logger.Error("service exited",
				logging.String(logging.FieldComponent, name),
				logging.Error(err),
			)
		}
	}()
}

// Wait blocks until every launched service has returned.
func (d *Daemon) Wait() {
	d.wg.Wait()
}

// Stop cancels the services, waits for them to drain, and releases the
// instance lock. Safe to call more than once.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.server.Stop()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("release daemon lock failed", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Running reports whether Start has completed and Stop has not.
func (d *Daemon) Running() bool {
	return d.running.Load()
}
