package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"cymap/internal/logging"
	"cymap/internal/state"
)

// WaitForMount blocks until the recordings root exists. The tree usually
// lives on a remote mount that comes up after the service, so the scanner
// refuses to start a pass that would see an empty world.
func (s *Scanner) WaitForMount(ctx context.Context) error {
	interval := time.Duration(s.cfg.Scanner.MountWait) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}

	for {
		if _, err := os.Stat(s.cfg.Paths.RecordingsDir); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		s.logger.Info("waiting for recordings mount",
			logging.String(logging.FieldPath, s.cfg.Paths.RecordingsDir),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Run is the live monitor loop: scan today's directories at the configured
// interval until the context is cancelled. Per-pass errors (including
// unreadable state documents) are logged and retried on the next pass.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.WaitForMount(ctx); err != nil {
		return err
	}
	if err := s.store.WriteProbe(); err != nil {
		return err
	}

	s.logger.Info("live monitoring started",
		logging.Duration("interval", s.cfg.ScanInterval()),
	)
	for {
		if _, err := s.ScanDate(ctx, time.Now()); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if !errors.Is(err, state.ErrUnreadable) {
				s.logger.Error("scan pass failed", logging.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.cfg.ScanInterval()):
		}
	}
}

// Backfill scans today plus the given number of prior days once, oldest
// first so the ledger receives historical identities before current ones.
func (s *Scanner) Backfill(ctx context.Context, days int) error {
	if err := s.WaitForMount(ctx); err != nil {
		return err
	}
	if err := s.store.WriteProbe(); err != nil {
		return err
	}

	now := time.Now()
	for i := days; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		day := now.AddDate(0, 0, -i)
		if _, err := s.ScanDate(ctx, day); err != nil && !errors.Is(err, state.ErrUnreadable) {
			return err
		}
	}
	return nil
}
