// Package transcribe maintains the duplex streaming connection to
// OpenAI's realtime transcription API.
//
// One Channel serves the whole session: the capture loop pushes base64
// PCM16 frames through SendAudio while the event dispatcher pulls
// lifecycle and transcript events through Next. The two directions are
// independent; sends are serialized by a write mutex, receives happen
// from a single reader.
package transcribe

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// DefaultURL is the transcription-intent realtime endpoint.
const DefaultURL = "wss://api.openai.com/v1/realtime?intent=transcription"

// ErrClosed is returned once the channel has been closed; the event
// sequence ends permanently and the channel is not restartable.
var ErrClosed = errors.New("transcribe: channel closed")

// ErrMissingAPIKey is returned by Dial when no API key is configured.
var ErrMissingAPIKey = errors.New("transcribe: missing API key")

// EventType discriminates inbound events. The set consumed downstream is
// closed; anything else is skipped.
type EventType string

const (
	EventSessionCreated      EventType = "transcription_session.created"
	EventSessionUpdated      EventType = "transcription_session.updated"
	EventTranscriptCompleted EventType = "conversation.item.input_audio_transcription.completed"
)

// Event is one inbound message from the transcription engine.
type Event struct {
	Type EventType

	// SessionID is set for EventSessionCreated.
	SessionID string

	// Session carries the raw session config for EventSessionUpdated,
	// kept opaque for diagnostic logging only.
	Session json.RawMessage

	// Transcript is set for EventTranscriptCompleted.
	Transcript string
}

// Config holds channel configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	APIKey string
	URL    string

	// Model is the transcription model identifier.
	Model string

	// Instructions steers the transcription beyond plain words.
	Instructions string

	HandshakeTimeout time.Duration
	Logger           *slog.Logger
}

// Option is a functional option for configuring the channel.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithURL overrides the realtime endpoint (used by tests).
func WithURL(url string) Option {
	return func(c *Config) { c.URL = url }
}

// WithModel sets the transcription model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithInstructions sets the transcription instruction prompt.
func WithInstructions(instructions string) Option {
	return func(c *Config) { c.Instructions = instructions }
}

// WithHandshakeTimeout sets the websocket handshake timeout.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) { c.HandshakeTimeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}
