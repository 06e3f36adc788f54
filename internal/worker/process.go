package worker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cymap/internal/logging"
	"cymap/internal/services"
	"cymap/internal/state"
	"cymap/internal/transcripts"
)

// processItem runs one recording through preparation and transcription.
// The claim (queue -> processing) is persisted before any expensive work so
// a crash mid-transcription leaves a visible marker instead of silently
// losing the item. A failure after the claim lands the item in error, with
// two exceptions: shutdown kills the external tools, so a cancelled context
// leaves the claim as-is for the next run to retry, and a configuration
// failure is returned to stop the loop rather than blaming the item.
func (w *Worker) processItem(ctx context.Context, day time.Time, identity string, entry state.Entry) error {
	logger := w.logger.With(
		logging.String(logging.FieldPath, identity),
		logging.String(logging.FieldDay, day.Format("2006-01-02")),
	)
	logger.Info("processing recording")

	if err := w.updateStatus(day, identity, state.StatusProcessing); err != nil {
		logger.Error("claim failed", logging.Error(err))
		return nil
	}

	prepared, err := w.prep.Prepare(ctx, identity)
	if err != nil {
		return w.recordFailure(ctx, day, identity, "prepare", err, logger)
	}
	defer w.removeArtifacts(prepared.WorkPath, logger)

	text, err := w.engine.Transcribe(ctx, prepared.WorkPath, filepath.Dir(prepared.WorkPath))
	if err != nil {
		return w.recordFailure(ctx, day, identity, "transcribe", err, logger)
	}

	record := transcripts.Entry{
		Path:     identity,
		Time:     entry.TimeAdded,
		Duration: prepared.Duration,
		Text:     text,
		Hash:     entry.Hash,
	}
	if err := w.transcripts.Append(day, record); err != nil {
		return w.recordFailure(ctx, day, identity, "persist", err, logger)
	}

	if err := w.updateStatus(day, identity, state.StatusProcessed); err != nil {
		// Transcript is durable; the reconciler will upgrade the status
		// on its next pass.
		logger.Warn("finalize status failed", logging.Error(err))
		return nil
	}

	preview := text
	if len(preview) > 60 {
		preview = preview[:60] + "..."
	}
	logger.Info("recording processed", logging.String("text", preview))
	return nil
}

// recordFailure decides what a failed stage means for the item. Cancelled
// context: shutdown interrupted the stage, the item keeps its processing
// claim and is retried on the next run. Configuration error: the loop must
// stop, the item is not at fault. Anything else is a per-item error.
func (w *Worker) recordFailure(ctx context.Context, day time.Time, identity, stage string, err error, logger *slog.Logger) error {
	if ctx.Err() != nil {
		logger.Info("interrupted, item keeps its processing claim",
			logging.String(logging.FieldStage, stage),
		)
		return nil
	}

	logger.Error("stage failed",
		logging.String(logging.FieldStage, stage),
		logging.Error(err),
	)
	if services.IsFatal(err) {
		return err
	}
	w.markError(day, identity, logger)
	return nil
}

func (w *Worker) updateStatus(day time.Time, identity string, status state.Status) error {
	return w.store.UpdateStatus(day, identity, status, w.cfg.Worker.UpdateRetries)
}

func (w *Worker) markError(day time.Time, identity string, logger *slog.Logger) {
	if err := w.updateStatus(day, identity, state.StatusError); err != nil {
		logger.Warn("record error status failed", logging.Error(err))
	}
}

// removeArtifacts deletes the prepared working copy and the engine output
// written beside it. Runs regardless of outcome.
func (w *Worker) removeArtifacts(workPath string, logger *slog.Logger) {
	if workPath == "" {
		return
	}
	base := strings.TrimSuffix(workPath, filepath.Ext(workPath))
	for _, path := range []string{workPath, base + ".json"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("remove temp artifact failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		}
	}
}
