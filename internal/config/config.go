// Package config provides environment-driven configuration for the
// roleplay demo. All settings flow through an explicit Config struct
// constructed once at process start; nothing reads the environment after
// Load returns.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Model and voice defaults. The character speaks through a fixed voice;
// there is no per-run selection.
const (
	DefaultChatModel       = "gpt-4o-mini"
	DefaultProfileModel    = "gpt-4o"
	DefaultTranscribeModel = "gpt-4o-mini-transcribe"
	DefaultTTSModel        = "gpt-4o-mini-tts"
	DefaultVoice           = "ash"
)

// Config holds application configuration.
type Config struct {
	OpenAIKey string

	// Model selection. ProfileModel generates the once-per-session voice
	// profile; ChatModel drives replies and line-style instructions.
	ChatModel       string
	ProfileModel    string
	TranscribeModel string
	TTSModel        string
	Voice           string

	// Audio device selection.
	AudioBackend string
	AudioDevice  string

	LogLevel string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("config: error loading .env file")
	}

	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		log.Println("Warning: OPENAI_API_KEY not set - all remote engines will fail")
	}

	return Config{
		OpenAIKey:       key,
		ChatModel:       envOr("ROLEPLAY_CHAT_MODEL", DefaultChatModel),
		ProfileModel:    envOr("ROLEPLAY_PROFILE_MODEL", DefaultProfileModel),
		TranscribeModel: envOr("ROLEPLAY_TRANSCRIBE_MODEL", DefaultTranscribeModel),
		TTSModel:        envOr("ROLEPLAY_TTS_MODEL", DefaultTTSModel),
		Voice:           envOr("ROLEPLAY_VOICE", DefaultVoice),
		AudioBackend:    envOr("ROLEPLAY_AUDIO_BACKEND", "auto"),
		AudioDevice:     os.Getenv("ROLEPLAY_AUDIO_DEVICE"),
		LogLevel:        envOr("ROLEPLAY_LOG_LEVEL", "info"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
