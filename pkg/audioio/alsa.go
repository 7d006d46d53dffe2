package audioio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
)

// alsaSource captures audio by piping raw PCM from an arecord subprocess.
type alsaSource struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	started bool
	closed  bool
}

func newALSASource(cfg Config, logger *slog.Logger) *alsaSource {
	return &alsaSource{cfg: cfg, logger: logger.With("component", "audioio.alsa")}
}

// Start launches the arecord subprocess.
func (s *alsaSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.started {
		return nil
	}

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(s.cfg.SampleRate),
		"-c", strconv.Itoa(s.cfg.Channels),
	}
	if s.cfg.Device != "" {
		args = append(args, "-D", s.cfg.Device)
	}

	cmd := exec.CommandContext(ctx, "arecord", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("audioio: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audioio: start arecord: %w", err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.started = true

	s.logger.Info("capture started", "device", s.cfg.Device, "sample_rate", s.cfg.SampleRate)
	return nil
}

// Read blocks until a full frame has been captured.
func (s *alsaSource) Read(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, io.EOF
	}
	if !s.started {
		s.mu.Unlock()
		return nil, errors.New("audioio: source not started")
	}
	stdout := s.stdout
	s.mu.Unlock()

	frame := make([]byte, s.cfg.FrameBytes())
	if _, err := io.ReadFull(stdout, frame); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("audioio: read frame: %w", err)
	}
	return frame, nil
}

// Name returns "alsa".
func (s *alsaSource) Name() string { return "alsa" }

// Close terminates the arecord subprocess. Safe to call more than once.
func (s *alsaSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if s.stdout != nil {
		_ = s.stdout.Close()
	}
	if s.cmd != nil {
		_ = s.cmd.Wait()
	}

	s.logger.Info("capture stopped")
	return nil
}

// alsaSink plays audio by piping raw PCM into an aplay subprocess, one
// process per playback so completion maps to process exit.
type alsaSink struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newALSASink(cfg Config, logger *slog.Logger) *alsaSink {
	return &alsaSink{cfg: cfg, logger: logger.With("component", "audioio.alsa")}
}

// Play streams audio into aplay and waits for the process to exit.
func (s *alsaSink) Play(ctx context.Context, audio io.Reader) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return io.ErrClosedPipe
	}
	s.mu.Unlock()

	args := []string{
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-r", strconv.Itoa(s.cfg.SampleRate),
		"-c", strconv.Itoa(s.cfg.Channels),
	}
	if s.cfg.Device != "" {
		args = append(args, "-D", s.cfg.Device)
	}

	cmd := exec.CommandContext(ctx, "aplay", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("audioio: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audioio: start aplay: %w", err)
	}

	_, copyErr := io.Copy(stdin, audio)
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("audioio: aplay: %w", err)
	}
	if copyErr != nil {
		return fmt.Errorf("audioio: write playback: %w", copyErr)
	}
	return nil
}

// Name returns "alsa".
func (s *alsaSink) Name() string { return "alsa" }

// Close marks the sink unusable. Safe to call more than once.
func (s *alsaSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify implementations at compile time.
var (
	_ Source = (*alsaSource)(nil)
	_ Sink   = (*alsaSink)(nil)
)
