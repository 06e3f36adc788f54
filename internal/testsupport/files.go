package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cymap/internal/config"
)

// WriteRecording creates a recording file under the group's dated directory
// and returns its absolute path. Content is arbitrary audio stand-in bytes.
func WriteRecording(t testing.TB, cfg *config.Config, group string, day time.Time, name string) string {
	t.Helper()

	dir := filepath.Join(
		cfg.Paths.RecordingsDir,
		group,
		day.Format("2006"),
		day.Format("01"),
		day.Format("02"),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create recording dir: %v", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("audio:"+name), 0o644); err != nil {
		t.Fatalf("write recording %s: %v", name, err)
	}
	return path
}
