// Package session holds the conversation state machine and the
// audio-duplex event loop that coordinates capture, transcription-driven
// generation, and playback.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/chat"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/prompt"
)

// State tracks one transcription session: its engine-assigned identity,
// the growing conversation transcript, and the once-computed character
// voice profile. It lives for the process lifetime only.
type State struct {
	charDesc string
	log      *EventLog

	mu           sync.Mutex
	sessionID    string
	startTime    time.Time
	conversation []chat.Message
	charVoice    string
	initialized  bool
}

// NewState builds the state with the single system record derived from
// the character description. The voice profile is not computed here;
// call Initialize before running the session so that construction cannot
// hide a blocking remote call.
func NewState(charDesc string, log *EventLog) *State {
	if log == nil {
		log = NewEventLog(nil)
	}
	return &State{
		charDesc: charDesc,
		log:      log,
		conversation: []chat.Message{
			chat.System(prompt.SystemPrompt(charDesc)),
		},
	}
}

// Initialize computes the character voice profile with one blocking call
// to the style engine. It runs exactly once per State; repeated calls are
// no-ops. Failure is fatal to the session: without a voice profile there
// are no valid synthesis instructions downstream.
func (s *State) Initialize(ctx context.Context, completer chat.Completer, model string) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	voice, err := completer.Complete(ctx, model, []chat.Message{
		chat.System(prompt.VoiceStylePrompt(s.charDesc)),
	})
	if err != nil {
		return fmt.Errorf("session: generate character voice profile: %w", err)
	}

	s.mu.Lock()
	s.charVoice = voice
	s.initialized = true
	s.mu.Unlock()

	s.log.Logf("Generated character voice instructions")
	return nil
}

// beginSession records the engine-assigned session identity. Set exactly
// once, on the first session_created event.
func (s *State) beginSession(id string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != "" {
		return
	}
	s.sessionID = id
	s.startTime = now
}

// SessionID returns the engine-assigned identity, empty before
// acknowledgment.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// CharVoice returns the session voice profile, empty before Initialize.
// Immutable once set; identical for every reply in the session.
func (s *State) CharVoice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.charVoice
}

// CharacterDescription returns the fixed persona text.
func (s *State) CharacterDescription() string {
	return s.charDesc
}

// Conversation returns a copy of the ordered message history.
func (s *State) Conversation() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.conversation))
	copy(out, s.conversation)
	return out
}

// appendUser appends a user turn. Called only from the reply pipeline,
// which runs one at a time.
func (s *State) appendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, chat.User(text))
}

// appendAssistant appends an assistant turn.
func (s *State) appendAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, chat.Assistant(text))
}
