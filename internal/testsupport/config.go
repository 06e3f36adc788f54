package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"cymap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test,
// with every derived path filled in and the pipeline directories created.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.BaseDir = base
	cfgVal.Paths.RecordingsDir = filepath.Join(base, "SDR Recordings")
	cfgVal.Paths.StatesDir = filepath.Join(base, "states")
	cfgVal.Paths.TranscriptDir = filepath.Join(base, "Transcriptions")
	cfgVal.Paths.LocationDir = filepath.Join(base, "Location")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.QueueFile = filepath.Join(base, "queue.lst")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Scanner.MountWait = 0
	cfgVal.Worker.UpdateRetries = 1

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(builder.cfg.Paths.RecordingsDir, 0o755); err != nil {
		t.Fatalf("create recordings dir: %v", err)
	}
	return builder.cfg
}

// WithGroups overrides the scanner group list on the test config.
func WithGroups(groups ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.Groups = groups
	}
}

// WithLookbackDays overrides the worker lookback window.
func WithLookbackDays(days int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Worker.LookbackDays = days
	}
}
