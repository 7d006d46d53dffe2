package tts

import (
	"context"
	"sync"
)

// Mock implements Provider for testing.
// Behavior can be customized via the SynthesizeFunc field.
type Mock struct {
	// SynthesizeFunc is called when Synthesize is invoked.
	// If nil, returns silent audio sized to the input text.
	SynthesizeFunc func(ctx context.Context, text, instructions string) (AudioStream, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Synthesize invocation for verification.
type MockCall struct {
	Text         string
	Instructions string
}

// NewMock creates a mock provider that yields silence.
func NewMock() *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text, instructions string) (AudioStream, error) {
			// ~20ms of audio per character at 24kHz PCM16, roughly
			// natural speech pacing.
			silence := make([]byte, len(text)*960)
			return NewBufferStream(silence, PCM24kMono), nil
		},
	}
}

// WithError returns a mock whose Synthesize always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		SynthesizeFunc: func(ctx context.Context, text, instructions string) (AudioStream, error) {
			return nil, err
		},
	}
}

// Synthesize records the call and delegates to SynthesizeFunc.
func (m *Mock) Synthesize(ctx context.Context, text, instructions string) (AudioStream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Text: text, Instructions: instructions})
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, instructions)
	}
	return nil, ErrStreamClosed
}

// Close releases resources.
func (m *Mock) Close() error { return nil }

// Calls returns a copy of recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Synthesize invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// BufferStream wraps a byte slice as an AudioStream, yielding it in
// fixed-size chunks.
type BufferStream struct {
	data   []byte
	offset int
	format AudioFormat
}

// NewBufferStream creates an AudioStream over a complete audio buffer.
func NewBufferStream(data []byte, format AudioFormat) *BufferStream {
	return &BufferStream{data: data, format: format}
}

// Read returns the next chunk, or nil when the buffer is exhausted.
func (s *BufferStream) Read() ([]byte, error) {
	if s.offset >= len(s.data) {
		return nil, nil
	}
	end := s.offset + 4096
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.offset:end]
	s.offset = end
	return chunk, nil
}

// Close releases resources.
func (s *BufferStream) Close() error { return nil }

// Format returns the audio format.
func (s *BufferStream) Format() AudioFormat { return s.format }

// Verify implementations at compile time.
var (
	_ Provider    = (*Mock)(nil)
	_ AudioStream = (*BufferStream)(nil)
)
