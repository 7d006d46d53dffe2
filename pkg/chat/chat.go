// Package chat provides a client for OpenAI's chat-completions API.
//
// The same client serves both roles the demo needs: generating character
// replies from the accumulated conversation, and generating speech-style
// instruction text from a single system prompt.
package chat

// Roles for conversation messages. The set is closed; the generation
// engine replays the ordered message list verbatim as prompt history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged record in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System returns a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User returns a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Assistant returns an assistant-role message.
func Assistant(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
