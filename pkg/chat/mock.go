package chat

import (
	"context"
	"sync"
)

// Mock implements Completer for testing.
// Behavior can be customized via the CompleteFunc field.
type Mock struct {
	// CompleteFunc is called when Complete is invoked.
	// If nil, a canned reply is returned.
	CompleteFunc func(ctx context.Context, model string, messages []Message) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Complete invocation for verification.
type MockCall struct {
	Model    string
	Messages []Message
}

// NewMock creates a mock completer that echoes a fixed reply.
func NewMock(reply string) *Mock {
	return &Mock{
		CompleteFunc: func(ctx context.Context, model string, messages []Message) (string, error) {
			return reply, nil
		},
	}
}

// Complete records the call and delegates to CompleteFunc.
func (m *Mock) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	m.mu.Lock()
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	m.calls = append(m.calls, MockCall{Model: model, Messages: msgs})
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, model, messages)
	}
	return "", ErrEmptyReply
}

// Calls returns a copy of recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Completer at compile time.
var _ Completer = (*Mock)(nil)
