package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"cymap/internal/config"
	"cymap/internal/services"
)

// Service invokes the offline Whisper CLI for speech-to-text. The engine is
// an opaque collaborator: cymap hands it a prepared WAV file and reads back
// plain text.
type Service struct {
	cfg           config.Whisper
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a whisper service with the given configuration.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:    cfg.Whisper,
		binary: cfg.WhisperBinary(),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	return s.cfg.Model
}

// Probe verifies the engine binary is resolvable. Called once at worker
// startup; failure is fatal per the error-handling contract.
func (s *Service) Probe() error {
	if _, err := exec.LookPath(s.binary); err != nil {
		return services.Wrap(services.ErrConfiguration, "whisper", "probe", s.binary, err)
	}
	return nil
}

// Transcribe runs the engine against a prepared WAV file and returns the
// recognized text. outputDir receives the engine's JSON output file, named
// after the source.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) (string, error) {
	if source == "" {
		return "", services.Wrap(services.ErrConfiguration, "whisper", "transcribe", "source path required", nil)
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	args := s.buildArgs(source, outputDir)
	if err := s.run(ctx, s.binary, args...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "whisper", "transcribe", source, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	text, err := loadTranscriptText(jsonPath)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "whisper", "read output", jsonPath, err)
	}
	return text, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	args := []string{
		source,
		"--model", s.cfg.Model,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--fp16", "False",
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// payload is the JSON structure the whisper CLI writes alongside the audio.
type payload struct {
	Text     string `json:"text"`
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
}

func loadTranscriptText(jsonPath string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return "", err
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", fmt.Errorf("parse whisper json: %w", err)
	}
	if text := strings.TrimSpace(p.Text); text != "" {
		return text, nil
	}
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
