package track

import (
	"sync"

	"github.com/zhubert/termhub/internal/term"
)

// ExitSource is the slice of the session manager the exit tracker consumes.
type ExitSource interface {
	OnExit(term.ExitFunc) (unsubscribe func())
}

// ExitTracker remembers the final status of exited sessions, which the
// manager itself forgets the moment a session leaves the registry.
type ExitTracker struct {
	mu    sync.Mutex
	exits map[string]term.ExitStatus
	unsub func()
}

// NewExitTracker subscribes to exit events. Call Close to unsubscribe.
func NewExitTracker(src ExitSource) *ExitTracker {
	t := &ExitTracker{exits: make(map[string]term.ExitStatus)}
	t.unsub = src.OnExit(func(sessionID string, code int, signal string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.exits[sessionID] = term.ExitStatus{Code: code, Signal: signal}
	})
	return t
}

// Status returns the recorded exit status of a session, if it has exited.
func (t *ExitTracker) Status(sessionID string) (term.ExitStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.exits[sessionID]
	return st, ok
}

// Close drops the manager subscription. Recorded statuses stay readable.
func (t *ExitTracker) Close() {
	t.unsub()
}
