package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directory layout shared by every pipeline process.
// Empty sub-paths are derived from BaseDir during normalization, so the
// usual deployment only sets base_dir.
type Paths struct {
	BaseDir       string `toml:"base_dir"`
	RecordingsDir string `toml:"recordings_dir"`
	StatesDir     string `toml:"states_dir"`
	TranscriptDir string `toml:"transcript_dir"`
	LocationDir   string `toml:"location_dir"`
	LogDir        string `toml:"log_dir"`
	QueueFile     string `toml:"queue_file"`
}

// Scanner contains discovery settings for the directory scanner.
type Scanner struct {
	Groups       []string `toml:"groups"`
	Extensions   []string `toml:"extensions"`
	PollInterval int      `toml:"poll_interval"`
	MountWait    int      `toml:"mount_wait"`
}

// Worker contains transcription worker loop settings.
type Worker struct {
	LookbackDays  int `toml:"lookback_days"`
	IdleInterval  int `toml:"idle_interval"`
	UpdateRetries int `toml:"update_retries"`
}

// Whisper contains speech-to-text engine settings.
type Whisper struct {
	Binary   string `toml:"binary"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

// Audio contains preparation settings applied before transcription.
type Audio struct {
	SampleRate  int `toml:"sample_rate"`
	HighPassHz  int `toml:"high_pass_hz"`
	LowPassHz   int `toml:"low_pass_hz"`
	PrepTimeout int `toml:"prep_timeout"`
}

// Route describes one transit route polled for vehicle positions.
type Route struct {
	ID    int64  `toml:"id"`
	Name  string `toml:"name"`
	Color string `toml:"color"`
}

// Locations contains vehicle-location poller settings.
type Locations struct {
	Enabled        bool    `toml:"enabled"`
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"api_key"`
	PollInterval   int     `toml:"poll_interval"`
	RequestTimeout int     `toml:"request_timeout"`
	Routes         []Route `toml:"routes"`
}

// Server contains dashboard HTTP server settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cymap.
//
// Sections by subsystem:
//   - Paths: shared directory layout (recordings, states, transcripts, ...)
//   - Scanner: group list, file extensions, and polling cadence
//   - Worker: lookback window and idle interval for the transcriber
//   - Whisper: speech-to-text engine binary and model
//   - Audio: resample/filter settings for audio preparation
//   - Locations: transit API polling for vehicle positions
//   - Server: dashboard bind address
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scanner   Scanner   `toml:"scanner"`
	Worker    Worker    `toml:"worker"`
	Whisper   Whisper   `toml:"whisper"`
	Audio     Audio     `toml:"audio"`
	Locations Locations `toml:"locations"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cymap/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cymap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// normalize expands user paths and fills derived directories from BaseDir.
func (c *Config) normalize() error {
	base, err := expandPath(c.Paths.BaseDir)
	if err != nil {
		return err
	}
	c.Paths.BaseDir = base

	derive := func(value *string, fallback string) error {
		if strings.TrimSpace(*value) == "" {
			*value = fallback
			return nil
		}
		expanded, err := expandPath(*value)
		if err != nil {
			return err
		}
		*value = expanded
		return nil
	}

	if err := derive(&c.Paths.RecordingsDir, filepath.Join(base, "SDR Recordings")); err != nil {
		return err
	}
	if err := derive(&c.Paths.StatesDir, filepath.Join(base, "states")); err != nil {
		return err
	}
	if err := derive(&c.Paths.TranscriptDir, filepath.Join(base, "Transcriptions")); err != nil {
		return err
	}
	if err := derive(&c.Paths.LocationDir, filepath.Join(base, "Location")); err != nil {
		return err
	}
	if err := derive(&c.Paths.LogDir, filepath.Join(base, "logs")); err != nil {
		return err
	}
	if err := derive(&c.Paths.QueueFile, filepath.Join(base, "queue.lst")); err != nil {
		return err
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	for i, ext := range c.Scanner.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Scanner.Extensions[i] = ext
	}

	return nil
}

// EnsureDirectories creates the directories the pipeline writes to. The
// recordings tree is deliberately excluded: it belongs to the external
// recorder and may live on a mount that appears later.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StatesDir, c.Paths.TranscriptDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Locations.Enabled {
		if err := os.MkdirAll(c.Paths.LocationDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.LocationDir, err)
		}
	}
	return nil
}

// ScanInterval returns the scanner polling cadence.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.PollInterval) * time.Second
}

// WorkerIdleInterval returns the sleep applied when a full worker pass finds
// nothing queued.
func (c *Config) WorkerIdleInterval() time.Duration {
	return time.Duration(c.Worker.IdleInterval) * time.Second
}

// WhisperBinary returns the speech-to-text executable name.
func (c *Config) WhisperBinary() string {
	if strings.TrimSpace(c.Whisper.Binary) != "" {
		return c.Whisper.Binary
	}
	return "whisper"
}

// FFmpegBinary returns the audio preparation executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the executable used to measure recording duration.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
