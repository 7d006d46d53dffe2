package audioio

import "fmt"

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
	// BackendALSA uses arecord/aplay for audio I/O.
	BackendALSA Backend = "alsa"
	// BackendMock uses a mock implementation for testing.
	BackendMock Backend = "mock"
)

// Config holds audio configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	// Default: "auto" (selects best available for platform)
	Backend Backend

	// SampleRate is the audio sample rate in Hz.
	// Default: 24000. The transcription engine's streaming protocol
	// requires 24kHz pcm16; this is not a tunable.
	SampleRate int

	// Channels is the number of audio channels. Default: 1 (mono).
	Channels int

	// FrameSamples is the number of samples per capture frame.
	// Default: 1024.
	FrameSamples int

	// Device is the platform-specific device identifier.
	// Examples: "hw:0,0", "default", "plughw:1,0". Empty uses the
	// system default.
	Device string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendAuto,
		SampleRate:   24000,
		Channels:     1,
		FrameSamples: 1024,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.FrameSamples <= 0 {
		return fmt.Errorf("frame_samples must be positive, got %d", c.FrameSamples)
	}
	return nil
}

// FrameBytes returns the size of one capture frame in bytes (PCM16).
func (c *Config) FrameBytes() int {
	return c.FrameSamples * c.Channels * 2
}
