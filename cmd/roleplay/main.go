// Command roleplay runs a voice-driven character chat: it streams the
// microphone to a realtime transcription session, answers each finalized
// utterance in character, and speaks the reply with per-line prosody
// instructions.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/internal/config"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/internal/log"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/audioio"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/chat"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/prompt"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/session"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/transcribe"
	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/tts"
)

func main() {
	cfg := config.Load()
	log.Init(cfg.LogLevel)
	logger := log.With("component", "main")

	if err := run(cfg); err != nil {
		logger.Error("session ended with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	logger := log.L()
	eventLog := session.NewEventLog(os.Stdout)

	// Ctrl-C ends the session cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	completer, err := chat.NewClient(
		chat.WithAPIKey(cfg.OpenAIKey),
		chat.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	synth, err := tts.NewOpenAI(
		tts.WithAPIKey(cfg.OpenAIKey),
		tts.WithModel(cfg.TTSModel),
		tts.WithVoice(cfg.Voice),
		tts.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer synth.Close()

	audioCfg := audioio.DefaultConfig()
	audioCfg.Backend = audioio.Backend(cfg.AudioBackend)
	audioCfg.Device = cfg.AudioDevice

	source, err := audioio.NewSource(audioCfg, logger)
	if err != nil {
		return err
	}
	defer source.Close()

	sink, err := audioio.NewSink(audioCfg, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	// The voice profile is computed once, before any audio flows.
	state := session.NewState(prompt.Character, eventLog)
	if err := state.Initialize(ctx, completer, cfg.ProfileModel); err != nil {
		return err
	}

	channel, err := transcribe.Dial(ctx,
		transcribe.WithAPIKey(cfg.OpenAIKey),
		transcribe.WithModel(cfg.TranscribeModel),
		transcribe.WithInstructions(prompt.TranscribeInstructions),
		transcribe.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer channel.Close()

	sess := session.New(state, channel, completer, synth, source, sink, cfg.ChatModel, logger)
	return sess.Run(ctx)
}
