package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cymap/internal/config"
	"cymap/internal/logging"
	"cymap/internal/media"
	"cymap/internal/state"
	"cymap/internal/transcripts"
)

// Engine is the speech-to-text collaborator the worker drains queued
// recordings through.
type Engine interface {
	Transcribe(ctx context.Context, source, outputDir string) (string, error)
	Probe() error
	Model() string
}

// Preparer produces the cleaned working copy handed to the engine.
type Preparer interface {
	Prepare(ctx context.Context, source string) (media.Result, error)
	Probe() error
}

// Worker drains queued recordings into transcripts, one at a time, across
// a rolling lookback window of state documents.
type Worker struct {
	cfg         *config.Config
	store       *state.Store
	transcripts *transcripts.Store
	prep        Preparer
	engine      Engine
	logger      *slog.Logger
}

// New constructs a worker.
func New(cfg *config.Config, store *state.Store, ts *transcripts.Store, prep Preparer, engine Engine, logger *slog.Logger) *Worker {
	return &Worker{
		cfg:         cfg,
		store:       store,
		transcripts: ts,
		prep:        prep,
		engine:      engine,
		logger:      logging.NewComponentLogger(logger, "worker"),
	}
}

// Run starts the processing loop and blocks until the context is cancelled.
// Engine or preparer initialization failure is fatal, and so is a
// configuration failure surfaced mid-run; other per-item failures are
// recorded on the item and never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.prep.Probe(); err != nil {
		return err
	}
	if err := w.engine.Probe(); err != nil {
		return err
	}

	w.logger.Info("processing loop started",
		logging.String("model", w.engine.Model()),
		logging.Int("lookback_days", w.cfg.Worker.LookbackDays),
	)

	for {
		didWork, err := w.processNext(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		if didWork {
			// Immediate re-poll so backlog drains as fast as the
			// engine allows.
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.cfg.WorkerIdleInterval()):
		}
	}
}

// processNext walks the lookback window newest-first and processes at most
// one queued recording. Returns true when an item was attempted, and a
// non-nil error only when the failure means the loop must stop.
func (w *Worker) processNext(ctx context.Context) (bool, error) {
	now := time.Now()
	for i := 0; i <= w.cfg.Worker.LookbackDays; i++ {
		if ctx.Err() != nil {
			return false, nil
		}
		day := now.AddDate(0, 0, -i)

		doc, err := w.store.Load(day)
		if err != nil {
			// Unknown state: skip the day, retry next pass.
			if !errors.Is(err, state.ErrUnreadable) {
				w.logger.Error("load state document failed",
					logging.String(logging.FieldDay, day.Format("2006-01-02")),
					logging.Error(err),
				)
			}
			continue
		}

		identity, entry, ok := doc.FirstQueued()
		if !ok {
			continue
		}
		return true, w.processItem(ctx, day, identity, entry)
	}
	return false, nil
}
