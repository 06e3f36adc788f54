package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cymap/internal/config"
	"cymap/internal/services"
)

// Preparer produces cleaned working copies of scanner-radio recordings for
// the transcription engine: mono, resampled, band-passed to the voice range,
// and loudness-normalized. The heavy lifting is delegated to ffmpeg.
type Preparer struct {
	cfg           config.Audio
	ffmpegBinary  string
	ffprobeBinary string
	commandRunner func(ctx context.Context, name string, args ...string) error
	outputRunner  func(ctx context.Context, name string, args ...string) (string, error)
}

// NewPreparer constructs a preparer using the configured filter settings.
func NewPreparer(cfg *config.Config) *Preparer {
	return &Preparer{
		cfg:           cfg.Audio,
		ffmpegBinary:  cfg.FFmpegBinary(),
		ffprobeBinary: cfg.FFprobeBinary(),
	}
}

// WithCommandRunner sets a custom runner for ffmpeg invocations (tests).
func (p *Preparer) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	p.commandRunner = runner
}

// WithOutputRunner sets a custom runner for ffprobe invocations (tests).
func (p *Preparer) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	p.outputRunner = runner
}

// Result describes a prepared working copy.
type Result struct {
	// WorkPath is the temporary cleaned WAV file. The caller owns it and
	// must remove it regardless of transcription outcome.
	WorkPath string
	// Duration is the source recording length in seconds.
	Duration float64
}

// Prepare builds the cleaned working copy for one recording.
func (p *Preparer) Prepare(ctx context.Context, source string) (Result, error) {
	var result Result

	if p.cfg.PrepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.PrepTimeout)*time.Second)
		defer cancel()
	}

	duration, err := p.probeDuration(ctx, source)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "media", "probe", source, err)
	}
	result.Duration = duration

	workPath := filepath.Join(os.TempDir(), fmt.Sprintf("cymap-%s.wav", uuid.NewString()))
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", source,
		"-ac", "1",
		"-ar", strconv.Itoa(p.cfg.SampleRate),
		"-af", p.filterChain(),
		"-y", workPath,
	}
	if err := p.run(ctx, p.ffmpegBinary, args...); err != nil {
		_ = os.Remove(workPath)
		return result, services.Wrap(services.ErrExternalTool, "media", "prepare", source, err)
	}

	result.WorkPath = workPath
	return result, nil
}

// Probe verifies the external binaries are resolvable. Called once at worker
// startup; failure is fatal.
func (p *Preparer) Probe() error {
	for _, binary := range []string{p.ffmpegBinary, p.ffprobeBinary} {
		if _, err := exec.LookPath(binary); err != nil {
			return services.Wrap(services.ErrConfiguration, "media", "probe", binary, err)
		}
	}
	return nil
}

func (p *Preparer) filterChain() string {
	filters := make([]string, 0, 3)
	if p.cfg.HighPassHz > 0 {
		filters = append(filters, fmt.Sprintf("highpass=f=%d", p.cfg.HighPassHz))
	}
	if p.cfg.LowPassHz > 0 {
		filters = append(filters, fmt.Sprintf("lowpass=f=%d", p.cfg.LowPassHz))
	}
	filters = append(filters, "loudnorm")
	return strings.Join(filters, ",")
}

func (p *Preparer) probeDuration(ctx context.Context, source string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		source,
	}
	output, err := p.output(ctx, p.ffprobeBinary, args...)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(output), err)
	}
	return duration, nil
}

func (p *Preparer) run(ctx context.Context, name string, args ...string) error {
	if p.commandRunner != nil {
		return p.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (p *Preparer) output(ctx context.Context, name string, args ...string) (string, error) {
	if p.outputRunner != nil {
		return p.outputRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}
