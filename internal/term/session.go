package term

import "time"

// Session is one live shell process under management. All fields are guarded
// by the Manager's mutex; nothing outside this package holds a *Session.
type Session struct {
	id        string
	pty       Pty
	shellPath string
	cwd       string
	pid       int
	createdAt time.Time

	// lastActive advances on writes, resizes, and pty output. The orphan
	// sweep compares it against the grace timeout.
	lastActive time.Time

	// observers holds opaque reference tokens registered by UI surfaces.
	// A session with observers is never swept.
	observers map[string]struct{}

	// readDone closes when the read loop has drained the pty, which is
	// what orders the exit event after the last data event.
	readDone chan struct{}
}

// SessionInfo is a point-in-time snapshot of a session, safe to hand out.
type SessionInfo struct {
	ID         string    `json:"id"`
	ShellPath  string    `json:"shellPath"`
	Cwd        string    `json:"cwd"`
	Pid        int       `json:"pid"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
	Observers  int       `json:"observers"`
}

// snapshot copies the session's current state. Caller holds the Manager lock.
func (s *Session) snapshot() SessionInfo {
	return SessionInfo{
		ID:         s.id,
		ShellPath:  s.shellPath,
		Cwd:        s.cwd,
		Pid:        s.pid,
		CreatedAt:  s.createdAt,
		LastActive: s.lastActive,
		Observers:  len(s.observers),
	}
}
