package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"parley/internal/services"
)

const (
	// DefaultBinary is the whisper.cpp CLI used for speech-to-text.
	DefaultBinary = "whisper-cli"
	// DefaultFFmpegBinary converts uploads to the waveform whisper expects.
	DefaultFFmpegBinary = "ffmpeg"
	// DefaultModel is the ggml model file passed via -m, resolved relative to
	// the working directory unless absolute.
	DefaultModel = "ggml-base.en.bin"

	defaultTimeout = 60 * time.Second
)

// Config captures the runtime settings for the speech-to-text engine.
type Config struct {
	Binary         string
	FFmpegBinary   string
	Model          string
	TimeoutSeconds int
}

// Service runs the whisper CLI against uploaded audio. Uploads are first
// normalized to 16kHz mono PCM WAV with ffmpeg because whisper only accepts
// that input format.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcriber service with the given configuration.
func NewService(cfg Config) *Service {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = DefaultFFmpegBinary
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Available reports whether the whisper and ffmpeg binaries can be found.
// Paths containing a separator are checked directly, bare names via PATH.
func (s *Service) Available() bool {
	if s == nil {
		return false
	}
	if s.commandRunner != nil {
		return true
	}
	for _, binary := range []string{s.cfg.Binary, s.cfg.FFmpegBinary} {
		if strings.ContainsRune(binary, os.PathSeparator) {
			if _, err := os.Stat(binary); err != nil {
				return false
			}
			continue
		}
		if _, err := exec.LookPath(binary); err != nil {
			return false
		}
	}
	return true
}

// Transcribe converts the uploaded audio to plain transcript text. The whole
// run is bounded by the configured timeout, and the per-request working
// directory is removed on every exit path.
func (s *Service) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", services.Wrap(services.ErrValidation, "transcriber", "transcribe", "audio payload required", nil)
	}
	if !s.Available() {
		return "", services.Wrap(services.ErrUnavailable, "transcriber", "transcribe", fmt.Sprintf("%s not found", s.cfg.Binary), nil)
	}

	workDir, err := os.MkdirTemp("", "parley-stt-*")
	if err != nil {
		return "", services.Wrap(services.ErrInternal, "transcriber", "transcribe", "create working directory", err)
	}
	defer os.RemoveAll(workDir)

	uploadPath := filepath.Join(workDir, "upload.audio")
	if err := os.WriteFile(uploadPath, audio, 0o600); err != nil {
		return "", services.Wrap(services.ErrInternal, "transcriber", "transcribe", "stage upload", err)
	}

	timeout := defaultTimeout
	if s.cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(s.cfg.TimeoutSeconds) * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := s.run(runCtx, s.cfg.FFmpegBinary, buildFFmpegArgs(uploadPath, wavPath)...); err != nil {
		return "", services.Wrap(services.ErrUpstream, "transcriber", "transcribe", "convert audio", err)
	}

	outPrefix := filepath.Join(workDir, "transcript")
	if err := s.run(runCtx, s.cfg.Binary, buildWhisperArgs(s.cfg.Model, wavPath, outPrefix)...); err != nil {
		return "", services.Wrap(services.ErrUpstream, "transcriber", "transcribe", "run whisper", err)
	}

	text, err := os.ReadFile(outPrefix + ".txt")
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, "transcriber", "transcribe", "read transcript output", err)
	}
	return strings.TrimSpace(string(text)), nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// buildFFmpegArgs converts arbitrary uploaded audio to 16kHz mono PCM WAV.
func buildFFmpegArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// buildWhisperArgs runs whisper with text output next to the input file.
func buildWhisperArgs(model, source, outPrefix string) []string {
	args := make([]string, 0, 8)
	if model != "" {
		args = append(args, "-m", model)
	}
	args = append(args,
		"-f", source,
		"-otxt",
		"-of", outPrefix,
		"-np",
	)
	return args
}
