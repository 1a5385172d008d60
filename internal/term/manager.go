package term

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/zhubert/termhub/internal/errors"
	"github.com/zhubert/termhub/internal/logger"
	"github.com/zhubert/termhub/internal/platform"
	"github.com/zhubert/termhub/internal/shell"
)

// Defaults for manager settings.
const (
	DefaultMaxSessions   = 20
	DefaultSweepInterval = 30 * time.Second
	DefaultGraceTimeout  = 5 * time.Minute
	DefaultCols          = 80
	DefaultRows          = 24

	// TermName is advertised to every spawned shell via TERM.
	TermName = "xterm-256color"
)

// ErrSessionLimit is returned by Spawn when admission control rejects a new
// session because the registry is full.
var ErrSessionLimit = errors.E(errors.Op("term.Spawn"), errors.KindLimit, "session limit reached")

// Settings controls admission and the orphan sweep. A SweepInterval <= 0
// disables the sweep entirely.
type Settings struct {
	MaxSessions   int
	SweepInterval time.Duration
	GraceTimeout  time.Duration
	DefaultCols   int
	DefaultRows   int
	DefaultShell  string // shell name used when a spawn names none
}

// DefaultSettings returns the stock manager configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxSessions:   DefaultMaxSessions,
		SweepInterval: DefaultSweepInterval,
		GraceTimeout:  DefaultGraceTimeout,
		DefaultCols:   DefaultCols,
		DefaultRows:   DefaultRows,
	}
}

// SpawnOptions are the caller-supplied parameters for a new session. Every
// field is optional; zero values fall back to platform and settings defaults.
type SpawnOptions struct {
	Shell string            // shell name ("zsh"), or a literal path if unresolvable
	Cwd   string            // working directory; home directory when empty
	Env   map[string]string // overlay merged onto the inherited environment
	Cols  int
	Rows  int
}

// DataFunc receives terminal output for a session.
type DataFunc func(sessionID, data string)

// ExitFunc receives the one exit event of a session. signal is empty when
// the process exited normally.
type ExitFunc func(sessionID string, code int, signal string)

// Manager owns every terminal session: spawn, input, resize, kill, event
// fan-out, observer accounting, and the orphan sweep.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	settings  Settings
	seq       uint64
	destroyed bool

	starter  Starter
	resolver *shell.Resolver
	plat     platform.Platform
	clock    Clock

	dataSubs map[int]DataFunc
	exitSubs map[int]ExitFunc
	nextSub  int

	sweepStop chan struct{}
	sweepDone chan struct{}

	log *slog.Logger
}

// NewManager creates a Manager and starts its orphan sweep (unless the
// settings disable it). Call Destroy to release everything.
func NewManager(starter Starter, resolver *shell.Resolver, plat platform.Platform, settings Settings) *Manager {
	if settings.MaxSessions <= 0 {
		settings.MaxSessions = DefaultMaxSessions
	}
	if settings.DefaultCols <= 0 {
		settings.DefaultCols = DefaultCols
	}
	if settings.DefaultRows <= 0 {
		settings.DefaultRows = DefaultRows
	}
	if settings.GraceTimeout <= 0 {
		settings.GraceTimeout = DefaultGraceTimeout
	}

	m := &Manager{
		sessions: make(map[string]*Session),
		settings: settings,
		starter:  starter,
		resolver: resolver,
		plat:     plat,
		clock:    systemClock{},
		dataSubs: make(map[int]DataFunc),
		exitSubs: make(map[int]ExitFunc),
		log:      logger.ComponentLogger("term"),
	}
	m.startSweep()
	return m
}

// Spawn starts a new shell session and returns its identifier. It returns
// ErrSessionLimit when the registry is full; spawn failures from the pty
// layer are wrapped and propagated.
func (m *Manager) Spawn(opts SpawnOptions) (string, error) {
	const op = errors.Op("term.Spawn")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.destroyed {
		return "", errors.E(op, errors.KindInvalid, "manager is destroyed")
	}
	if len(m.sessions) >= m.settings.MaxSessions {
		m.log.Warn("session limit reached, rejecting spawn", "limit", m.settings.MaxSessions)
		return "", ErrSessionLimit
	}

	shellPath := m.resolveShellLocked(opts.Shell)
	cwd := opts.Cwd
	if cwd == "" {
		cwd = m.plat.HomeDir()
	}
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = m.settings.DefaultCols
	}
	if rows <= 0 {
		rows = m.settings.DefaultRows
	}
	env := MergeEnviron(os.Environ(), opts.Env, m.plat.OS() == "windows")

	p, err := m.starter.Start(StartOptions{
		ShellPath: shellPath,
		Cwd:       cwd,
		Env:       env,
		Cols:      cols,
		Rows:      rows,
		TermName:  TermName,
	})
	if err != nil {
		m.log.Error("spawn failed", "shell", shellPath, "error", err)
		return "", errors.E(op, errors.KindSpawn, fmt.Sprintf("starting %s", shellPath), err)
	}

	now := m.clock.Now()
	s := &Session{
		id:         m.nextIDLocked(),
		pty:        p,
		shellPath:  shellPath,
		cwd:        cwd,
		pid:        p.Pid(),
		createdAt:  now,
		lastActive: now,
		observers:  make(map[string]struct{}),
		readDone:   make(chan struct{}),
	}
	m.sessions[s.id] = s

	go m.readLoop(s)
	go m.waitLoop(s)

	m.log.Info("session spawned", "sessionID", s.id, "shell", shellPath, "cwd", cwd, "pid", s.pid)
	return s.id, nil
}

// resolveShellLocked maps a requested shell to an executable path. An
// unresolvable name is passed through verbatim so callers can spawn by
// absolute path.
func (m *Manager) resolveShellLocked(name string) string {
	if name == "" {
		name = m.settings.DefaultShell
	}
	if name == "" {
		if info := m.resolver.ResolveDefault(); info != nil {
			return info.Path
		}
		return "/bin/sh"
	}
	if info := m.resolver.ResolveByName(name); info != nil {
		return info.Path
	}
	return name
}

// nextIDLocked produces a fresh session id from the monotonic counter and
// the current time. The counter keeps ids unique even within one
// millisecond.
func (m *Manager) nextIDLocked() string {
	m.seq++
	return fmt.Sprintf("term-%d-%d", m.seq, m.clock.Now().UnixMilli())
}

// Write sends input bytes to a session verbatim, control characters
// included. It reports whether the session exists.
func (m *Manager) Write(id string, data string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	s.lastActive = m.clock.Now()
	p := s.pty
	m.mu.Unlock()

	if _, err := p.Write([]byte(data)); err != nil {
		m.log.Warn("write to session failed", "sessionID", id, "error", err)
	}
	return true
}

// Resize changes a session's terminal geometry. Non-positive dimensions are
// rejected with a KindInvalid error before the pty is touched; found is
// false when no such session exists.
func (m *Manager) Resize(id string, cols, rows int) (found bool, err error) {
	const op = errors.Op("term.Resize")
	if cols <= 0 {
		return false, errors.E(op, errors.KindInvalid, fmt.Sprintf("cols must be a positive integer, got %d", cols))
	}
	if rows <= 0 {
		return false, errors.E(op, errors.KindInvalid, fmt.Sprintf("rows must be a positive integer, got %d", rows))
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false, nil
	}
	s.lastActive = m.clock.Now()
	p := s.pty
	m.mu.Unlock()

	if rerr := p.Resize(cols, rows); rerr != nil {
		m.log.Warn("resize failed", "sessionID", id, "cols", cols, "rows", rows, "error", rerr)
	}
	return true, nil
}

// Kill terminates a session and removes it from the registry. It reports
// whether the session existed; killing twice returns false the second time.
// The exit event still fires once the process actually dies.
func (m *Manager) Kill(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	m.terminate(s)
	return true
}

// terminate signals the session's process, tolerating the race where it
// exits on its own first.
func (m *Manager) terminate(s *Session) {
	if s.pid <= 0 {
		return
	}
	if err := s.pty.Terminate(); err != nil {
		m.log.Warn("terminate failed, process may have already exited", "sessionID", s.id, "error", err)
	}
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (SessionInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return SessionInfo{}, false
	}
	return s.snapshot(), true
}

// GetAll returns snapshots of every live session, ordered by id.
func (m *Manager) GetAll() []SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetAllIDs returns the ids of every live session, ordered.
func (m *Manager) GetAllIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// AddObserverRef registers an observer token on a session, shielding it from
// the orphan sweep. It reports whether the session exists.
func (m *Manager) AddObserverRef(id, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.observers[token] = struct{}{}
	return true
}

// RemoveObserverRef drops an observer token from a session. Unknown sessions
// and unknown tokens are both no-ops.
func (m *Manager) RemoveObserverRef(id, token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	delete(s.observers, token)
	return true
}

// OnData registers a subscriber for terminal output across all sessions.
// The returned function unsubscribes; calling it more than once is safe.
func (m *Manager) OnData(fn DataFunc) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	id := m.nextSub
	m.dataSubs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.dataSubs, id)
	}
}

// OnExit registers a subscriber for session exit events.
func (m *Manager) OnExit(fn ExitFunc) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	id := m.nextSub
	m.exitSubs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.exitSubs, id)
	}
}

// KillAll terminates every live session.
func (m *Manager) KillAll() {
	m.mu.Lock()
	victims := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		victims = append(victims, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	if len(victims) > 0 {
		m.log.Info("killing all sessions", "count", len(victims))
	}
	for _, s := range victims {
		m.terminate(s)
	}
}

// Destroy stops the orphan sweep and kills every session. The manager
// rejects spawns afterwards. Safe to call even if the sweep never started.
func (m *Manager) Destroy() {
	m.stopSweep()
	m.mu.Lock()
	m.destroyed = true
	m.mu.Unlock()
	m.KillAll()
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// readLoop drains a session's pty, stamping activity and fanning output out
// to data subscribers. It runs until the pty hits EOF or an error, which on
// most platforms is how process exit shows up on the master side.
func (m *Manager) readLoop(s *Session) {
	defer close(s.readDone)
	buf := make([]byte, 32*1024)
	for {
		n, err := s.pty.Read(buf)
		if n > 0 {
			data := string(buf[:n])
			m.touch(s.id)
			m.dispatchData(s.id, data)
		}
		if err != nil {
			if err != io.EOF {
				m.log.Debug("pty read ended", "sessionID", s.id, "error", err)
			}
			return
		}
	}
}

// waitLoop reaps the process and delivers the session's single exit event.
// It waits for the read loop to finish first so every data event precedes
// the exit event.
func (m *Manager) waitLoop(s *Session) {
	st := s.pty.Wait()
	<-s.readDone

	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()
	s.pty.Close()

	m.log.Info("session exited", "sessionID", s.id, "code", st.Code, "signal", st.Signal)
	m.dispatchExit(s.id, st.Code, st.Signal)
}

// touch refreshes a session's activity timestamp.
func (m *Manager) touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.lastActive = m.clock.Now()
	}
}

func (m *Manager) dispatchData(id, data string) {
	m.mu.Lock()
	fns := make([]DataFunc, 0, len(m.dataSubs))
	for _, fn := range m.dataSubs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(id, data)
	}
}

func (m *Manager) dispatchExit(id string, code int, signal string) {
	m.mu.Lock()
	fns := make([]ExitFunc, 0, len(m.exitSubs))
	for _, fn := range m.exitSubs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(id, code, signal)
	}
}
