package session

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventLog emits the operator-facing session log: one line per event,
// prefixed with the elapsed time since session acknowledgment, or
// "pre-session" before it. Logging is side effect only and never aborts
// the session.
type EventLog struct {
	mu    sync.Mutex
	w     io.Writer
	start time.Time
}

// NewEventLog creates an event log writing to w. A nil w means stdout.
func NewEventLog(w io.Writer) *EventLog {
	if w == nil {
		w = os.Stdout
	}
	return &EventLog{w: w}
}

// Start records the session acknowledgment time. Set exactly once; later
// calls are ignored.
func (l *EventLog) Start(t time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.start.IsZero() {
		l.start = t
	}
}

// Logf writes one timestamped line. Write errors are swallowed; the log
// must never take the session down.
func (l *EventLog) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := "[pre-session]"
	if !l.start.IsZero() {
		prefix = fmt.Sprintf("[%.2fs]", time.Since(l.start).Seconds())
	}
	_, _ = fmt.Fprintf(l.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
