package term

import (
	"time"
)

// startSweep launches the orphan-sweep loop. No-op when the interval is
// non-positive or a loop is already running.
func (m *Manager) startSweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.SweepInterval <= 0 || m.sweepStop != nil || m.destroyed {
		return
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	m.sweepStop, m.sweepDone = stop, done
	interval := m.settings.SweepInterval

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.sweepOnce()
			case <-stop:
				return
			}
		}
	}()
}

// stopSweep cancels the sweep loop and waits for it to exit. Safe to call
// when the sweep never started. The wait happens outside the lock because
// the loop takes the lock in sweepOnce.
func (m *Manager) stopSweep() {
	m.mu.Lock()
	stop, done := m.sweepStop, m.sweepDone
	m.sweepStop, m.sweepDone = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// UpdateSettings applies a new settings bundle at runtime. Sweep timing
// changes restart the sweep loop immediately; an interval <= 0 disables it.
// Admission and geometry defaults take effect on the next spawn. Zero-valued
// fields other than SweepInterval leave the current value unchanged.
func (m *Manager) UpdateSettings(s Settings) {
	m.stopSweep()

	m.mu.Lock()
	if s.MaxSessions > 0 {
		m.settings.MaxSessions = s.MaxSessions
	}
	if s.DefaultCols > 0 {
		m.settings.DefaultCols = s.DefaultCols
	}
	if s.DefaultRows > 0 {
		m.settings.DefaultRows = s.DefaultRows
	}
	if s.DefaultShell != "" {
		m.settings.DefaultShell = s.DefaultShell
	}
	m.settings.SweepInterval = s.SweepInterval
	if s.GraceTimeout > 0 {
		m.settings.GraceTimeout = s.GraceTimeout
	}
	m.mu.Unlock()

	m.startSweep()
}

// sweepOnce reclaims every session that has no observers and whose last
// activity is older than the grace timeout. Both conditions are required:
// an observer keeps an idle-but-displayed terminal alive, and recent
// activity keeps observerless background work alive. Returns the number of
// sessions reclaimed.
func (m *Manager) sweepOnce() int {
	now := m.clock.Now()

	m.mu.Lock()
	grace := m.settings.GraceTimeout
	var victims []string
	for id, s := range m.sessions {
		if len(s.observers) == 0 && now.Sub(s.lastActive) > grace {
			victims = append(victims, id)
		}
	}
	m.mu.Unlock()

	for _, id := range victims {
		m.log.Info("reclaiming orphaned session", "sessionID", id)
		m.Kill(id)
	}
	return len(victims)
}

// sweepRunning reports whether the sweep loop is active.
func (m *Manager) sweepRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepStop != nil
}
