package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cymap/internal/fileutil"
	"cymap/internal/logging"
)

// ErrUnreadable is returned by Load when the day's document exists but its
// bytes cannot be read or parsed, typically because a concurrent writer is
// mid-rename or the file was truncated. Callers must treat it as "unknown
// state, do not act": acting as if the day were empty would re-register
// every known recording and reset its status.
var ErrUnreadable = errors.New("state document unreadable")

// Store provides crash-safe access to per-day state documents under a
// single states directory. Concurrent processes share documents without
// locks; safety comes from atomic replace-on-write and from refusing to
// act on unreadable documents.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore constructs a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "state"),
	}
}

// DocumentPath returns the document location for a calendar day:
// <dir>/YYYY/MM/DD.json.
func (s *Store) DocumentPath(day time.Time) string {
	return filepath.Join(
		s.dir,
		day.Format("2006"),
		day.Format("01"),
		day.Format("02")+".json",
	)
}

// Load reads and parses the day's document. A document that does not exist
// yields an empty Document and no error; bytes that exist but fail to read
// or parse yield ErrUnreadable.
func (s *Store) Load(day time.Time) (Document, error) {
	path := s.DocumentPath(day)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnreadable, path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrUnreadable, path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Save serializes the full document and atomically replaces the previous
// version. A failed save leaves the previous document intact.
func (s *Store) Save(day time.Time, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state document: %w", err)
	}
	path := s.DocumentPath(day)
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save state document %s: %w", path, err)
	}
	return nil
}

// UpdateStatus transitions one entry to the given status, stamping
// TimeUpdated. The document is re-read immediately before writing to keep
// the lost-update window as small as possible; unreadable reads are retried
// up to retries times before giving up.
func (s *Store) UpdateStatus(day time.Time, identity string, status Status, retries int) error {
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}

		doc, err := s.Load(day)
		if err != nil {
			lastErr = err
			continue
		}

		entry, ok := doc[identity]
		if !ok {
			return fmt.Errorf("update status: %s not tracked on %s", identity, day.Format("2006-01-02"))
		}
		if !CanTransition(entry.Status, status) {
			return fmt.Errorf("update status: illegal transition %s -> %s for %s", entry.Status, status, identity)
		}

		entry.Status = status
		entry.TimeUpdated = time.Now()
		doc[identity] = entry

		if err := s.Save(day, doc); err != nil {
			return err
		}

		s.logger.Debug("status updated",
			logging.String(logging.FieldPath, identity),
			logging.String(logging.FieldStatus, string(status)),
			logging.String(logging.FieldDay, day.Format("2006-01-02")),
		)
		return nil
	}
	return fmt.Errorf("update status for %s: %w", identity, lastErr)
}

// WriteProbe verifies the states directory is writable. Scanner startup
// treats failure as fatal so misconfigured permissions surface immediately
// instead of as silent scan no-ops.
func (s *Store) WriteProbe() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create states directory %q: %w", s.dir, err)
	}
	probe := filepath.Join(s.dir, ".perm_test")
	if err := os.WriteFile(probe, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("states directory %q not writable: %w", s.dir, err)
	}
	return os.Remove(probe)
}
