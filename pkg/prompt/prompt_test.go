package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xiaoschannel/adaptive-roleplay-openai-tts/pkg/prompt"
)

func TestSystemPrompt(t *testing.T) {
	t.Run("embeds character verbatim", func(t *testing.T) {
		out := prompt.SystemPrompt(prompt.Character)
		require.Contains(t, out, "Sir Alaric Dorne")
		require.Contains(t, out, prompt.Character)
		require.Contains(t, out, "at most one paragraph")
	})

	t.Run("deterministic", func(t *testing.T) {
		a := prompt.SystemPrompt("a knight")
		b := prompt.SystemPrompt("a knight")
		require.Equal(t, a, b)
	})
}

func TestVoiceStylePrompt(t *testing.T) {
	out := prompt.VoiceStylePrompt("a grizzled sailor")
	require.Contains(t, out, "a grizzled sailor")
	require.Contains(t, out, "general speaking style")
}

func TestLineStylePrompt(t *testing.T) {
	out := prompt.LineStylePrompt("Voice: gravelly.", "Hark, who goes there?")
	require.Contains(t, out, "Voice: gravelly.")
	require.Contains(t, out, "Hark, who goes there?")
}

func TestCombinedInstructions(t *testing.T) {
	out := prompt.CombinedInstructions("Voice: low.", "Emphasis: the oath.")
	require.Contains(t, out, "Voice: low.")
	require.Contains(t, out, "Emphasis: the oath.")
	// The profile comes first, then the line-specific block.
	require.Less(t,
		strings.Index(out, "Voice: low."),
		strings.Index(out, "Emphasis: the oath."),
	)
}

// Template-sensitive input must survive rendering untouched: braces,
// newlines, and template syntax are data, not directives.
func TestTemplateSensitiveInputPreserved(t *testing.T) {
	hostile := "line one\n{{.CharDesc}} {brace} `tick`\nline three"

	for name, out := range map[string]string{
		"system":   prompt.SystemPrompt(hostile),
		"voice":    prompt.VoiceStylePrompt(hostile),
		"line":     prompt.LineStylePrompt(hostile, hostile),
		"combined": prompt.CombinedInstructions(hostile, hostile),
	} {
		t.Run(name, func(t *testing.T) {
			require.Contains(t, out, hostile)
		})
	}
}
