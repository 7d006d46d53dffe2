// Package prompt renders the text payloads sent to the generation, style,
// and synthesis engines. All functions are pure: the same inputs always
// produce byte-identical output, and provided values are embedded verbatim
// with no escaping.
package prompt

import (
	"strings"
	"text/template"
)

var (
	systemTmpl = template.Must(template.New("system").Parse(`
Your task is to roleplay as the following character:
{{.CharDesc}}

respond in at most one paragraph. keep it short and conversational.
`))

	voiceStyleTmpl = template.Must(template.New("voice_style").Parse(`
Create a set of instructions for the character's general speaking style.
The instructions should describe the character's voice, tone, punctuation, affect, pacing, delivery, and phrasing.
Focus on the consistent aspects of the character's speech that apply to all their lines.

Character:
{{.CharDesc}}

Sample output:
` + "```" + `
Voice: Low and measured, carrying the weight of experience and authority.
Punctuation: Well-structured with deliberate pauses, reflecting careful thought.
Delivery: Calm and dignified, with occasional moments of emotional depth.
Phrasing: Archaic but clear, using medieval terminology and formal language.
Tone: Honorable and introspective, balanced with moments of vulnerability.
` + "```" + `
`))

	lineStyleTmpl = template.Must(template.New("line_style").Parse(`
Create specific instructions for how the character should speak these particular lines.
Focus on the emotional context, emphasis, and any special pronunciation needed for these specific words.
Be short and only focus on the important parts.

Character's general voice style:
{{.CharVoice}}

Lines to speak:
{{.Lines}}

Sample output:
` + "```" + `
Emotional context: [describe the emotional state for these specific lines]
Emphasis: [note which words or phrases need special emphasis]
Pronunciation: [any specific pronunciation guidance for these lines]
Pauses: [where to add specific pauses or breaks]
` + "```" + `
`))

	combinedTmpl = template.Must(template.New("combined").Parse(`{{.CharVoice}}

Additional instructions for these specific lines:
{{.LineInstructions}}
`))
)

type promptData struct {
	CharDesc         string
	CharVoice        string
	Lines            string
	LineInstructions string
}

// SystemPrompt renders the system message that frames the whole
// conversation around the character description.
func SystemPrompt(charDesc string) string {
	return render(systemTmpl, promptData{CharDesc: charDesc})
}

// VoiceStylePrompt renders the once-per-session request for the
// character's general speaking style.
func VoiceStylePrompt(charDesc string) string {
	return render(voiceStyleTmpl, promptData{CharDesc: charDesc})
}

// LineStylePrompt renders the request for delivery instructions specific
// to one reply's lines.
func LineStylePrompt(charVoice, lines string) string {
	return render(lineStyleTmpl, promptData{CharVoice: charVoice, Lines: lines})
}

// CombinedInstructions joins the session voice profile with the
// line-specific instructions into the final synthesis guidance.
func CombinedInstructions(charVoice, lineInstructions string) string {
	return render(combinedTmpl, promptData{CharVoice: charVoice, LineInstructions: lineInstructions})
}

// render executes a template over string fields only; execution cannot fail.
func render(t *template.Template, data promptData) string {
	var b strings.Builder
	_ = t.Execute(&b, data)
	return b.String()
}
