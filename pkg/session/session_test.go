package session_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/audioio"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/chat"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/prompt"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/session"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/transcribe"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/tts"
)

// fakeTransport is an in-memory stand-in for the transcription channel.
type fakeTransport struct {
	events chan transcribe.Event
	done   chan struct{}

	mu         sync.Mutex
	framesSent int
	closeCount atomic.Int64
	closeOnce  sync.Once
}

func newFakeTransport(events ...transcribe.Event) *fakeTransport {
	f := &fakeTransport{
		events: make(chan transcribe.Event, 16),
		done:   make(chan struct{}),
	}
	for _, ev := range events {
		f.events <- ev
	}
	return f
}

func (f *fakeTransport) SendAudio(pcm16 []byte) error {
	select {
	case <-f.done:
		return transcribe.ErrClosed
	default:
	}
	f.mu.Lock()
	f.framesSent++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Next(ctx context.Context) (transcribe.Event, error) {
	// Drain pending events before honoring shutdown, so queued
	// transcripts are delivered in arrival order.
	select {
	case ev := <-f.events:
		return ev, nil
	default:
	}
	select {
	case <-ctx.Done():
		return transcribe.Event{}, ctx.Err()
	case <-f.done:
		return transcribe.Event{}, transcribe.ErrClosed
	case ev := <-f.events:
		return ev, nil
	}
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() {
		f.closeCount.Add(1)
		close(f.done)
	})
	return nil
}

func (f *fakeTransport) FramesSent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.framesSent
}

// scriptedCompleter answers the three kinds of chat calls the session
// makes: voice profile, character reply, and line-style instructions.
func scriptedCompleter(reply, profile, lineStyle string) *chat.Mock {
	return &chat.Mock{
		CompleteFunc: func(ctx context.Context, model string, messages []chat.Message) (string, error) {
			switch {
			case len(messages) > 1:
				return reply, nil
			case strings.Contains(messages[0].Content, "general speaking style"):
				return profile, nil
			default:
				return lineStyle, nil
			}
		},
	}
}

func sessionCreated(id string) transcribe.Event {
	return transcribe.Event{Type: transcribe.EventSessionCreated, SessionID: id}
}

func transcriptCompleted(text string) transcribe.Event {
	return transcribe.Event{Type: transcribe.EventTranscriptCompleted, Transcript: text}
}

type harness struct {
	state     *session.State
	transport *fakeTransport
	completer *chat.Mock
	synth     *tts.Mock
	source    *audioio.MockSource
	sink      *audioio.MockSink
	sess      *session.Session
}

func newHarness(t *testing.T, transport *fakeTransport) *harness {
	t.Helper()

	cfg := audioio.DefaultConfig()
	cfg.Backend = audioio.BackendMock

	h := &harness{
		transport: transport,
		completer: scriptedCompleter(
			"I remember the oath I swore at Eldhollow.",
			"Voice: low and measured.",
			"Emphasis: the oath.",
		),
		synth:  tts.NewMock(),
		source: audioio.NewMockSource(cfg, nil),
		sink:   audioio.NewMockSink(cfg, nil),
	}

	h.state = session.NewState(prompt.Character, session.NewEventLog(nullWriter{}))
	require.NoError(t, h.state.Initialize(context.Background(), h.completer, "gpt-4o"))

	h.sess = session.New(h.state, h.transport, h.completer, h.synth, h.source, h.sink, "gpt-4o-mini", nil)
	return h
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

// run starts the session and returns a cancel-and-wait function.
func (h *harness) run(t *testing.T) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.sess.Run(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("session did not shut down")
			return nil
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestConversationGrowsTwoRecordsPerTurn(t *testing.T) {
	transcripts := []string{
		"Tell me of your youth.",
		"Did you ever falter?",
		"What of your comrades?",
	}
	events := []transcribe.Event{sessionCreated("sess_1")}
	for _, tr := range transcripts {
		events = append(events, transcriptCompleted(tr))
	}

	h := newHarness(t, newFakeTransport(events...))
	stop := h.run(t)
	waitFor(t, func() bool { return len(h.sink.Played()) == len(transcripts) })
	require.NoError(t, stop())

	conv := h.state.Conversation()
	require.Len(t, conv, 1+2*len(transcripts))
	require.Equal(t, chat.RoleSystem, conv[0].Role)
	for i, tr := range transcripts {
		user := conv[1+2*i]
		assistant := conv[2+2*i]
		require.Equal(t, chat.RoleUser, user.Role)
		require.Equal(t, tr, user.Content)
		require.Equal(t, chat.RoleAssistant, assistant.Role)
		require.NotEmpty(t, assistant.Content)
	}
}

func TestCharVoiceComputedExactlyOnce(t *testing.T) {
	completer := scriptedCompleter("reply", "Voice: low.", "Emphasis: none.")
	state := session.NewState(prompt.Character, session.NewEventLog(nullWriter{}))

	require.NoError(t, state.Initialize(context.Background(), completer, "gpt-4o"))
	first := state.CharVoice()
	require.NoError(t, state.Initialize(context.Background(), completer, "gpt-4o"))

	require.Equal(t, 1, completer.CallCount())
	require.Equal(t, first, state.CharVoice())
}

func TestPipelineRunsAreSerialized(t *testing.T) {
	// Both transcripts are queued before the first pipeline run starts;
	// the slow completer keeps run 1 in flight while event 2 waits.
	var inFlight, maxInFlight atomic.Int64
	base := scriptedCompleter("A measured answer.", "Voice: low.", "Emphasis: none.")
	slow := &chat.Mock{
		CompleteFunc: func(ctx context.Context, model string, messages []chat.Message) (string, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				prev := maxInFlight.Load()
				if n <= prev || maxInFlight.CompareAndSwap(prev, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			return base.CompleteFunc(ctx, model, messages)
		},
	}

	transport := newFakeTransport(
		sessionCreated("sess_1"),
		transcriptCompleted("First question?"),
		transcriptCompleted("Second question?"),
	)

	h := newHarness(t, transport)
	h.sess = session.New(h.state, transport, slow, h.synth, h.source, h.sink, "gpt-4o-mini", nil)

	stop := h.run(t)
	waitFor(t, func() bool { return len(h.sink.Played()) == 2 })
	require.NoError(t, stop())

	require.Equal(t, int64(1), maxInFlight.Load())

	// No record from run 2 slipped between run 1's user and assistant.
	conv := h.state.Conversation()
	require.Len(t, conv, 5)
	require.Equal(t, "First question?", conv[1].Content)
	require.Equal(t, chat.RoleAssistant, conv[2].Role)
	require.Equal(t, "Second question?", conv[3].Content)
	require.Equal(t, chat.RoleAssistant, conv[4].Role)
}

func TestFullTurnScenario(t *testing.T) {
	transport := newFakeTransport(
		sessionCreated("sess_1"),
		transcriptCompleted("Tell me of your youth."),
	)

	h := newHarness(t, transport)
	stop := h.run(t)
	waitFor(t, func() bool { return len(h.sink.Played()) == 1 })
	require.NoError(t, stop())

	conv := h.state.Conversation()
	require.Len(t, conv, 3)
	require.Equal(t, chat.Message{Role: chat.RoleUser, Content: "Tell me of your youth."}, conv[1])
	require.NotEmpty(t, conv[2].Content)

	// Synthesis got the reply text and instructions containing both the
	// session voice profile and the line-specific text.
	calls := h.synth.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, conv[2].Content, calls[0].Text)
	require.Contains(t, calls[0].Instructions, "Voice: low and measured.")
	require.Contains(t, calls[0].Instructions, "Emphasis: the oath.")

	// A non-empty audio stream reached the sink.
	require.NotEmpty(t, h.sink.Played()[0])

	// The capture loop was forwarding frames the whole time.
	require.Greater(t, transport.FramesSent(), 0)
}

func TestSynthesisFailureIsTurnLocal(t *testing.T) {
	transport := newFakeTransport(
		sessionCreated("sess_1"),
		transcriptCompleted("First question?"),
	)

	h := newHarness(t, transport)
	h.sess = session.New(h.state, transport, h.completer, tts.WithError(context.DeadlineExceeded),
		h.source, h.sink, "gpt-4o-mini", nil)

	stop := h.run(t)

	// The failed turn still appended its user and assistant records.
	waitFor(t, func() bool { return len(h.state.Conversation()) == 3 })
	require.Empty(t, h.sink.Played())

	// The dispatcher keeps accepting further transcripts.
	transport.events <- transcriptCompleted("Second question?")
	waitFor(t, func() bool { return len(h.state.Conversation()) == 5 })
	require.NoError(t, stop())

	conv := h.state.Conversation()
	require.Equal(t, chat.RoleUser, conv[3].Role)
	require.Equal(t, "Second question?", conv[3].Content)
	require.Equal(t, chat.RoleAssistant, conv[4].Role)
	require.Empty(t, h.sink.Played())
}

func TestShutdownReleasesResourcesExactlyOnce(t *testing.T) {
	h := newHarness(t, newFakeTransport(sessionCreated("sess_1")))
	stop := h.run(t)

	// Let the capture loop get going mid-read before cancelling.
	waitFor(t, func() bool { return h.source.FramesRead() > 0 })
	require.NoError(t, stop())

	require.Equal(t, int64(1), h.source.CloseCount())
	require.Equal(t, int64(1), h.sink.CloseCount())
	require.Equal(t, int64(1), h.transport.closeCount.Load())
}

func TestSessionCreatedRecordsIdentityOnce(t *testing.T) {
	h := newHarness(t, newFakeTransport(
		sessionCreated("sess_first"),
		sessionCreated("sess_second"),
		transcriptCompleted("Speak."),
	))

	stop := h.run(t)
	waitFor(t, func() bool { return len(h.sink.Played()) == 1 })
	require.NoError(t, stop())

	require.Equal(t, "sess_first", h.state.SessionID())
}
