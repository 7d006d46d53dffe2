// Package audioio provides microphone capture and speaker playback for
// the roleplay demo.
//
// Two backends are supported:
//   - ALSA (Linux) - arecord/aplay subprocesses piping raw PCM
//   - Mock - testing without hardware
//
// The backend is selected automatically based on platform, or can be
// explicitly specified via configuration.
package audioio

import (
	"context"
	"io"
)

// Source captures audio from a microphone or other input device.
type Source interface {
	// Start begins audio capture. Must be called before Read.
	Start(ctx context.Context) error

	// Read returns the next fixed-size frame of PCM16 audio, blocking
	// until one is available. Returns io.EOF once the source is closed.
	Read(ctx context.Context) ([]byte, error)

	// Name returns the backend name (e.g., "alsa", "mock").
	Name() string

	// Close releases the device. Safe to call more than once; after
	// Close the source cannot be restarted.
	io.Closer
}

// Sink plays audio to a speaker or other output device.
type Sink interface {
	// Play renders the PCM16 stream to the output device, blocking
	// until playback completes or ctx is cancelled.
	Play(ctx context.Context, audio io.Reader) error

	// Name returns the backend name (e.g., "alsa", "mock").
	Name() string

	// Close releases the device. Safe to call more than once.
	io.Closer
}
