package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"cymap/internal/config"
	"cymap/internal/fileutil"
	"cymap/internal/ledger"
	"cymap/internal/logging"
	"cymap/internal/state"
	"cymap/internal/transcripts"
)

// Scanner discovers new recordings under the configured group directories
// and registers them in the day's state document and the queue ledger.
type Scanner struct {
	cfg    *config.Config
	store  *state.Store
	ledger *ledger.Ledger
	oracle transcripts.Oracle
	logger *slog.Logger
}

// New constructs a scanner.
func New(cfg *config.Config, store *state.Store, led *ledger.Ledger, oracle transcripts.Oracle, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		store:  store,
		ledger: led,
		oracle: oracle,
		logger: logging.NewComponentLogger(logger, "scanner"),
	}
}

// Result summarizes one scan pass over a single date.
type Result struct {
	Discovered int
	Queued     int
	Reconciled int
	Missing    int
}

func (r Result) changed() bool {
	return r.Discovered > 0 || r.Reconciled > 0 || r.Missing > 0
}

// ScanDate discovers and registers recordings for one calendar date. The
// date names both the directories scanned and the state document written:
// a recording's day is where it was filed, not when the scan ran.
//
// The pass is aborted without writing anything when the day's document is
// unreadable; registering against an unknown baseline would re-queue every
// already-known recording.
func (s *Scanner) ScanDate(ctx context.Context, day time.Time) (Result, error) {
	var result Result

	doc, err := s.store.Load(day)
	if err != nil {
		s.logger.Warn("state document unreadable, skipping scan",
			logging.String(logging.FieldDay, day.Format("2006-01-02")),
			logging.Error(err),
		)
		return result, err
	}

	var newQueued []string
	for _, group := range s.cfg.Scanner.Groups {
		for _, dir := range s.dayDirs(group, day) {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			discovered, queued, err := s.scanDir(ctx, dir, group, day, doc)
			if err != nil {
				s.logger.Warn("group directory scan failed",
					logging.String(logging.FieldGroup, group),
					logging.String(logging.FieldPath, dir),
					logging.Error(err),
				)
				continue
			}
			result.Discovered += discovered
			newQueued = append(newQueued, queued...)
		}
	}
	result.Queued = len(newQueued)

	reconciled, missing := s.reconcile(day, doc)
	result.Reconciled = reconciled
	result.Missing = missing

	if !result.changed() {
		return result, nil
	}

	if err := s.store.Save(day, doc); err != nil {
		return result, err
	}
	if err := s.ledger.Append(newQueued); err != nil {
		s.logger.Warn("queue ledger append failed", logging.Error(err))
	}

	s.logger.Info("scan updated state",
		logging.String(logging.FieldDay, day.Format("2006-01-02")),
		logging.Int("discovered", result.Discovered),
		logging.Int("queued", result.Queued),
		logging.Int("reconciled", result.Reconciled),
		logging.Int("missing", result.Missing),
	)
	return result, nil
}

// scanDir registers new recordings from one group/day directory into doc.
// Files are visited in sorted order so re-runs append to the ledger in the
// same order.
func (s *Scanner) scanDir(ctx context.Context, dir, group string, day time.Time, doc state.Document) (int, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Most group/day combinations are empty; not an error.
			return 0, nil, nil
		}
		return 0, nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.matchesExtension(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	discovered := 0
	var queued []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return discovered, queued, err
		}

		fullPath, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			return discovered, queued, fmt.Errorf("resolve %s: %w", name, err)
		}

		if _, known := doc[fullPath]; known {
			continue
		}

		status := state.StatusQueue
		if s.oracle.HasTranscript(day, fullPath) {
			status = state.StatusProcessed
		}

		var hash *string
		if digest, err := fileutil.HashFile(fullPath); err != nil {
			s.logger.Warn("content hash failed",
				logging.String(logging.FieldPath, fullPath),
				logging.Error(err),
			)
		} else {
			hash = &digest
		}

		now := time.Now()
		doc[fullPath] = state.Entry{
			Path:        fullPath,
			Hash:        hash,
			Status:      status,
			TimeAdded:   now,
			TimeUpdated: now,
			Group:       group,
		}
		discovered++
		if status == state.StatusQueue {
			queued = append(queued, fullPath)
		}

		s.logger.Info("new recording found",
			logging.String(logging.FieldPath, fullPath),
			logging.String(logging.FieldGroup, group),
			logging.String(logging.FieldStatus, string(status)),
		)
	}
	return discovered, queued, nil
}

// dayDirs returns the candidate directories for a group and date. Recorders
// have filed under both zero-padded and bare month/day names, so both
// variants are probed (deduplicated).
func (s *Scanner) dayDirs(group string, day time.Time) []string {
	year := day.Format("2006")
	months := uniqueStrings(day.Format("01"), strconv.Itoa(int(day.Month())))
	days := uniqueStrings(day.Format("02"), strconv.Itoa(day.Day()))

	dirs := make([]string, 0, len(months)*len(days))
	for _, month := range months {
		for _, d := range days {
			dirs = append(dirs, filepath.Join(s.cfg.Paths.RecordingsDir, group, year, month, d))
		}
	}
	return dirs
}

func (s *Scanner) matchesExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, allowed := range s.cfg.Scanner.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func uniqueStrings(values ...string) []string {
	out := values[:0]
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
