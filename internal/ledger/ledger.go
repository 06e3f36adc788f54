package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"cymap/internal/logging"
)

// terminator closes each appended batch so schema-agnostic consumers can
// detect a complete write.
const terminator = "END"

// Ledger is a flat, append-only text file of queued recording identities,
// one per line, kept for downstream consumers that cannot parse the JSON
// state documents. Entries are write-once and the file is never compacted.
type Ledger struct {
	path   string
	logger *slog.Logger
}

// New constructs a ledger backed by the file at path.
func New(path string, logger *slog.Logger) *Ledger {
	return &Ledger{
		path:   path,
		logger: logging.NewComponentLogger(logger, "ledger"),
	}
}

// Path returns the backing file location.
func (l *Ledger) Path() string {
	return l.path
}

// Existing returns the set of identities already recorded, excluding batch
// terminators. An absent ledger yields an empty set.
func (l *Ledger) Existing() (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return seen, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(strings.TrimSpace(scanner.Text()), ";")
		if line == "" || line == terminator {
			continue
		}
		seen[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return seen, nil
}

// Append writes the identities not already present, followed by a single
// batch terminator line. A batch with nothing new still gets its terminator
// so consumers see the write boundary. No-op for an empty batch.
func (l *Ledger) Append(identities []string) error {
	if len(identities) == 0 {
		return nil
	}

	existing, err := l.Existing()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	appended := 0
	for _, identity := range identities {
		if _, ok := existing[identity]; ok {
			continue
		}
		if _, err := fmt.Fprintf(f, "%s;\n", identity); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
		existing[identity] = struct{}{}
		appended++
	}
	if _, err := fmt.Fprintf(f, "%s;\n", terminator); err != nil {
		return fmt.Errorf("append ledger terminator: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}

	if appended > 0 {
		l.logger.Info("queued new recordings", logging.Int("count", appended))
	}
	return nil
}
