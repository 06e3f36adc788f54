package transcripts

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

// Entry is one completed transcription result. Field names match the
// on-disk JSON contract shared with the dashboard and external readers.
type Entry struct {
	Path     string    `json:"Path"`
	Time     time.Time `json:"Time"`
	Duration float64   `json:"Duration"`
	Text     string    `json:"Text"`
	Hash     *string   `json:"Hash"`
}

// Store manages the per-day transcript documents (ordered JSON arrays)
// under a single transcripts directory. Append-only from the worker's
// perspective; entries are never mutated after creation.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore constructs a transcript store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "transcripts"),
	}
}

// DocumentPath returns the transcript document location for a calendar day:
// <dir>/YYYY/MM/DD.json.
func (s *Store) DocumentPath(day time.Time) string {
	return filepath.Join(
		s.dir,
		day.Format("2006"),
		day.Format("01"),
		day.Format("02")+".json",
	)
}

// Load reads the day's transcript document. Absent or unparseable documents
// yield an empty slice: unlike state documents, transcripts are an oracle
// consulted opportunistically, and a torn read only delays recognition of
// an already-processed recording until the next pass.
func (s *Store) Load(day time.Time) []Entry {
	path := s.DocumentPath(day)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("transcript document unreadable",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("transcript document unparseable",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
		return nil
	}
	return entries
}

// Append adds one entry to the day's document, preserving existing entries,
// and atomically replaces the file.
func (s *Store) Append(day time.Time, entry Entry) error {
	entries := s.Load(day)
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript document: %w", err)
	}

	path := s.DocumentPath(day)
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("append transcript %s: %w", path, err)
	}

	s.logger.Info("transcript saved",
		logging.String(logging.FieldPath, entry.Path),
		logging.String(logging.FieldDay, day.Format("2006-01-02")),
		logging.Float64("duration", entry.Duration),
	)
	return nil
}
