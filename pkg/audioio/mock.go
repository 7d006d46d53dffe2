package audioio

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
)

// MockSource is a mock audio source for testing.
// It generates synthetic frames (silence or a sine wave) on demand.
type MockSource struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	closed  bool

	// Synthetic audio generation
	phase     float64
	frequency float64 // Hz, 0 = silence
	amplitude float64 // 0.0 to 1.0

	framesRead atomic.Int64
	closeCount atomic.Int64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithSineWave configures the mock to generate a sine wave.
func WithSineWave(frequency, amplitude float64) MockSourceOption {
	return func(m *MockSource) {
		m.frequency = frequency
		m.amplitude = amplitude
	}
}

// NewMockSource creates a new mock audio source.
func NewMockSource(cfg Config, logger *slog.Logger, opts ...MockSourceOption) *MockSource {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MockSource{cfg: cfg, logger: logger, amplitude: 0.5}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins generating audio.
func (m *MockSource) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return io.ErrClosedPipe
	}
	m.started = true
	return nil
}

// Read returns the next synthetic frame.
func (m *MockSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, io.EOF
	}

	frame := make([]byte, m.cfg.FrameBytes())
	if m.frequency > 0 {
		step := 2 * math.Pi * m.frequency / float64(m.cfg.SampleRate)
		for i := 0; i < m.cfg.FrameSamples; i++ {
			sample := int16(m.amplitude * math.Sin(m.phase) * math.MaxInt16)
			frame[i*2] = byte(sample)
			frame[i*2+1] = byte(sample >> 8)
			m.phase += step
		}
	}

	m.framesRead.Add(1)
	return frame, nil
}

// FramesRead returns the number of frames produced.
func (m *MockSource) FramesRead() int64 {
	return m.framesRead.Load()
}

// CloseCount returns how many times Close completed a release.
func (m *MockSource) CloseCount() int64 {
	return m.closeCount.Load()
}

// Name returns "mock".
func (m *MockSource) Name() string { return "mock" }

// Close releases the source. Only the first call counts as a release.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.closeCount.Add(1)
	return nil
}

// MockSink is a mock audio sink that records everything played to it.
type MockSink struct {
	cfg    Config
	logger *slog.Logger

	// PlayErr, if set, is returned by Play instead of consuming audio.
	PlayErr error

	mu         sync.Mutex
	played     [][]byte
	closed     bool
	closeCount atomic.Int64
}

// NewMockSink creates a new mock audio sink.
func NewMockSink(cfg Config, logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSink{cfg: cfg, logger: logger}
}

// Play consumes the stream and records its bytes.
func (m *MockSink) Play(ctx context.Context, audio io.Reader) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return io.ErrClosedPipe
	}
	playErr := m.PlayErr
	m.mu.Unlock()

	if playErr != nil {
		return playErr
	}

	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.played = append(m.played, data)
	m.mu.Unlock()
	return nil
}

// Played returns a copy of the recorded playbacks, one entry per Play call.
func (m *MockSink) Played() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.played))
	copy(out, m.played)
	return out
}

// CloseCount returns how many times Close completed a release.
func (m *MockSink) CloseCount() int64 {
	return m.closeCount.Load()
}

// Name returns "mock".
func (m *MockSink) Name() string { return "mock" }

// Close releases the sink. Only the first call counts as a release.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.closeCount.Add(1)
	return nil
}

// Verify implementations at compile time.
var (
	_ Source = (*MockSource)(nil)
	_ Sink   = (*MockSink)(nil)
)
