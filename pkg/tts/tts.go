// Package tts synthesizes character speech through OpenAI's speech API.
//
// The synthesis call carries two texts: the line to speak and a block of
// style instructions (session voice profile plus line-specific delivery
// notes). Output is requested as raw PCM16 so it can be written straight
// to the playback sink without a decode step.
package tts

import (
	"context"
	"io"
)

// Provider defines the speech-synthesis interface consumed by the session
// layer.
type Provider interface {
	// Synthesize converts text to speech, steered by the given style
	// instructions. The returned stream yields raw PCM16 audio.
	Synthesize(ctx context.Context, text, instructions string) (AudioStream, error)

	// Close releases any resources held by the provider.
	Close() error
}

// AudioStream represents a streaming audio response.
// Callers should read until Read returns nil, then call Close.
type AudioStream interface {
	// Read returns the next audio chunk.
	// Returns nil when the stream is complete (not an error).
	Read() ([]byte, error)

	// Close stops the stream and releases resources.
	Close() error

	// Format returns the audio format metadata.
	Format() AudioFormat
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	// SampleRate in Hz.
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// BitDepth for PCM formats.
	BitDepth int
}

// PCM24kMono is the format the speech API produces for response_format
// "pcm", and the only format the playback sink accepts.
var PCM24kMono = AudioFormat{
	SampleRate: 24000,
	Channels:   1,
	BitDepth:   16,
}

// StreamReader adapts an AudioStream to io.Reader so it can be fed
// straight into a playback sink.
func StreamReader(s AudioStream) io.Reader {
	return &streamReader{stream: s}
}

type streamReader struct {
	stream AudioStream
	buf    []byte
	done   bool
}

func (r *streamReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		chunk, err := r.stream.Read()
		if err != nil {
			return 0, err
		}
		if chunk == nil {
			r.done = true
			return 0, io.EOF
		}
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
