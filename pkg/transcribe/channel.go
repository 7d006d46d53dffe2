package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Channel is one long-lived duplex streaming connection to the
// transcription engine. It is created by Dial and lives for the session.
type Channel struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial connects to the realtime transcription endpoint and sends the
// session initialization message. Audio must not be sent before Dial
// returns.
func Dial(ctx context.Context, opts ...Option) (*Channel, error) {
	cfg := Config{
		URL:              DefaultURL,
		Model:            "gpt-4o-mini-transcribe",
		HandshakeTimeout: 10 * time.Second,
		Logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+cfg.APIKey)
	headers.Set("OpenAI-Beta", "realtime=v1")

	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	logger := cfg.Logger.With("component", "transcribe")
	logger.Info("connecting to realtime transcription API", "model", cfg.Model)

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transcribe: dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("transcribe: dial failed: %w", err)
	}

	ch := &Channel{conn: conn, logger: logger}

	if err := ch.configureSession(cfg); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("transcribe: configure session: %w", err)
	}

	logger.Info("connected")
	return ch, nil
}

// configureSession sends the one-time transcription_session.update init
// message. Field names and values follow the engine's expected schema.
func (c *Channel) configureSession(cfg Config) error {
	msg := map[string]any{
		"type": "transcription_session.update",
		"session": map[string]any{
			"input_audio_format": "pcm16",
			"input_audio_transcription": map[string]any{
				"model":  cfg.Model,
				"prompt": cfg.Instructions,
			},
			"turn_detection": map[string]any{
				"type":      "semantic_vad",
				"eagerness": "auto",
			},
			"input_audio_noise_reduction": map[string]any{
				"type": "near_field",
			},
		},
	}
	return c.sendJSON(msg)
}

// SendAudio base64-encodes one frame of raw PCM16 and transmits it as an
// append event. A transport failure here is fatal to the session; there
// is no buffering or retry.
func (c *Channel) SendAudio(pcm16 []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	msg := map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(pcm16),
	}
	return c.sendJSON(msg)
}

// inboundMessage is the wire shape of events we consume.
type inboundMessage struct {
	Type       string          `json:"type"`
	Session    json.RawMessage `json:"session"`
	Transcript string          `json:"transcript"`
}

// Next blocks until the next recognized event arrives. Unrecognized event
// types are skipped, not fatal. Once the connection dies the sequence
// ends permanently: every subsequent call returns an error.
//
// Next does not watch ctx while blocked on the socket; cancellation is
// delivered by closing the channel, which unblocks the read.
func (c *Channel) Next(ctx context.Context) (Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		if c.closed.Load() {
			return Event{}, ErrClosed
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return Event{}, ErrClosed
			}
			return Event{}, fmt.Errorf("transcribe: read: %w", err)
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("skipping malformed message", "error", err)
			continue
		}

		switch EventType(msg.Type) {
		case EventSessionCreated:
			var session struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(msg.Session, &session)
			return Event{Type: EventSessionCreated, SessionID: session.ID}, nil

		case EventSessionUpdated:
			return Event{Type: EventSessionUpdated, Session: msg.Session}, nil

		case EventTranscriptCompleted:
			return Event{Type: EventTranscriptCompleted, Transcript: msg.Transcript}, nil

		default:
			c.logger.Debug("skipping event", "type", msg.Type)
		}
	}
}

// Close releases the connection. Idempotent; it must run on every exit
// path. A close frame is attempted before the transport is torn down.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		c.closeErr = c.conn.Close()
		c.logger.Info("disconnected")
	})
	return c.closeErr
}

// sendJSON writes one JSON message, serialized against concurrent sends.
func (c *Channel) sendJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}
