package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/audioio"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/chat"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/prompt"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/transcribe"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/tts"
)

// Transport is the duplex streaming connection to the transcription
// engine, written by the capture loop and read by the dispatcher.
type Transport interface {
	SendAudio(pcm16 []byte) error
	Next(ctx context.Context) (transcribe.Event, error)
	Close() error
}

// Session runs the audio-duplex event loop: a capture loop forwarding
// microphone frames to the transcription engine, and a dispatcher that
// reacts to its events and serially drives the reply pipeline.
type Session struct {
	state     *State
	transport Transport
	completer chat.Completer
	synth     tts.Provider
	source    audioio.Source
	sink      audioio.Sink

	chatModel string
	log       *EventLog
	logger    *slog.Logger
}

// New assembles a session from its collaborators. The state must already
// be initialized (voice profile computed).
func New(state *State, transport Transport, completer chat.Completer, synth tts.Provider,
	source audioio.Source, sink audioio.Sink, chatModel string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		state:     state,
		transport: transport,
		completer: completer,
		synth:     synth,
		source:    source,
		sink:      sink,
		chatModel: chatModel,
		log:       state.log,
		logger:    logger.With("component", "session"),
	}
}

// Run drives the session until ctx is cancelled or either loop fails.
// The microphone, the sink, and the transport are released on every exit
// path. A clean external cancellation returns nil; any other first
// failure is returned after teardown.
func (s *Session) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	if err := s.source.Start(ctx); err != nil {
		s.teardown()
		return fmt.Errorf("session: open microphone: %w", err)
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		errCh <- s.captureLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		errCh <- s.dispatchLoop(ctx)
	}()

	var first error
	external := false
	select {
	case <-parent.Done():
		external = true
	case first = <-errCh:
	}

	// Unblock whichever loop is still waiting on a device or the socket,
	// then wait both out before reporting. The second loop's error is a
	// teardown artifact and is discarded.
	cancel()
	s.teardown()
	wg.Wait()

	if external {
		return nil
	}
	return first
}

// teardown releases the devices and the channel. Everything here is
// idempotent, so it is safe on every exit path.
func (s *Session) teardown() {
	if err := s.transport.Close(); err != nil {
		s.logger.Warn("closing transport", "error", err)
	}
	if err := s.source.Close(); err != nil {
		s.logger.Warn("closing microphone", "error", err)
	}
	if err := s.sink.Close(); err != nil {
		s.logger.Warn("closing playback sink", "error", err)
	}
}

// captureLoop reads fixed-size frames from the microphone and forwards
// each over the transport, preserving capture order. Any read or
// transport failure ends the session.
func (s *Session) captureLoop(ctx context.Context) error {
	for {
		frame, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("session: capture: %w", err)
		}
		if err := s.transport.SendAudio(frame); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("session: send audio: %w", err)
		}
	}
}

// dispatchLoop pulls inbound events and reacts. Transcript completions
// drive the reply pipeline synchronously on this goroutine, so pipeline
// runs are strictly serialized in arrival order and nothing else mutates
// the conversation.
func (s *Session) dispatchLoop(ctx context.Context) error {
	for {
		ev, err := s.transport.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("session: dispatch: %w", err)
		}

		switch ev.Type {
		case transcribe.EventSessionCreated:
			now := time.Now()
			s.state.beginSession(ev.SessionID, now)
			s.log.Start(now)
			s.log.Logf("Session created with ID: %s", ev.SessionID)

		case transcribe.EventSessionUpdated:
			// Diagnostic only, no state transition.
			s.log.Logf("Session updated: %s", ev.Session)

		case transcribe.EventTranscriptCompleted:
			s.runTurn(ctx, ev.Transcript)
		}
	}
}

// runTurn executes one reply pipeline run for a finalized transcript.
// Failures are turn-local: the assistant turn is abandoned, the error is
// reported, and listening continues. No retries.
func (s *Session) runTurn(ctx context.Context, transcript string) {
	turnID := uuid.NewString()[:8]
	start := time.Now()

	s.log.Logf("Final transcription: %s", transcript)
	s.state.appendUser(transcript)

	reply, err := s.completer.Complete(ctx, s.chatModel, s.state.Conversation())
	if err != nil {
		s.turnFailed(turnID, "generate reply", err)
		return
	}
	s.state.appendAssistant(reply)
	s.log.Logf("Assistant response: %s", reply)

	lineInstructions, err := s.completer.Complete(ctx, s.chatModel, []chat.Message{
		chat.System(prompt.LineStylePrompt(s.state.CharVoice(), reply)),
	})
	if err != nil {
		s.turnFailed(turnID, "generate line instructions", err)
		return
	}
	s.log.Logf("Line-specific instructions: %s", lineInstructions)

	instructions := prompt.CombinedInstructions(s.state.CharVoice(), lineInstructions)
	s.log.Logf("Combined TTS instructions: %s", instructions)

	stream, err := s.synth.Synthesize(ctx, reply, instructions)
	if err != nil {
		s.turnFailed(turnID, "synthesize audio", err)
		return
	}
	defer stream.Close()
	s.log.Logf("Finished generating Audio")

	if err := s.sink.Play(ctx, tts.StreamReader(stream)); err != nil {
		s.turnFailed(turnID, "play audio", err)
		return
	}
	s.log.Logf("Finished playing Audio")

	s.logger.Debug("turn complete",
		"turn_id", turnID,
		"transcript_chars", len(transcript),
		"reply_chars", len(reply),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// turnFailed reports a turn-local failure without letting it escape to
// the dispatcher loop.
func (s *Session) turnFailed(turnID, step string, err error) {
	s.log.Logf("Turn failed while trying to %s: %v", step, err)
	s.logger.Error("turn failed", "turn_id", turnID, "step", step, "error", err)
}
