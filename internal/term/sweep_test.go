package term

import (
	"testing"
	"time"
)

func TestSweepReclaimsStaleObserverlessSession(t *testing.T) {
	m, _, clk := newTestManager(t)
	id, _ := m.Spawn(SpawnOptions{})

	clk.advance(6 * time.Minute)
	if n := m.sweepOnce(); n != 1 {
		t.Fatalf("sweepOnce reclaimed %d sessions, want 1", n)
	}
	if _, ok := m.Get(id); ok {
		t.Error("stale observerless session survived the sweep")
	}
}

func TestSweepSparesRecentlyActiveSession(t *testing.T) {
	m, _, clk := newTestManager(t)
	id, _ := m.Spawn(SpawnOptions{})

	clk.advance(1 * time.Minute)
	if n := m.sweepOnce(); n != 0 {
		t.Fatalf("sweepOnce reclaimed %d sessions, want 0", n)
	}
	if _, ok := m.Get(id); !ok {
		t.Error("recently active session was swept")
	}
}

func TestSweepSparesObservedSession(t *testing.T) {
	m, _, clk := newTestManager(t)
	id, _ := m.Spawn(SpawnOptions{})
	m.AddObserverRef(id, "pane-1")

	// Idle far past the grace timeout, but still displayed somewhere.
	clk.advance(10 * time.Minute)
	if n := m.sweepOnce(); n != 0 {
		t.Fatalf("sweepOnce reclaimed %d sessions, want 0", n)
	}

	// Dropping the last observer makes it eligible.
	m.RemoveObserverRef(id, "pane-1")
	if n := m.sweepOnce(); n != 1 {
		t.Fatalf("sweepOnce reclaimed %d sessions after observer removal, want 1", n)
	}
}

func TestWriteRefreshesActivity(t *testing.T) {
	m, _, clk := newTestManager(t)
	id, _ := m.Spawn(SpawnOptions{})

	clk.advance(4 * time.Minute)
	m.Write(id, "make test\n")
	clk.advance(4 * time.Minute)

	// Eight minutes since spawn, but only four since the last write.
	if n := m.sweepOnce(); n != 0 {
		t.Fatalf("sweepOnce reclaimed %d sessions, want 0", n)
	}

	clk.advance(2 * time.Minute)
	if n := m.sweepOnce(); n != 1 {
		t.Fatalf("sweepOnce reclaimed %d sessions, want 1", n)
	}
}

func TestResizeRefreshesActivity(t *testing.T) {
	m, _, clk := newTestManager(t)
	id, _ := m.Spawn(SpawnOptions{})

	clk.advance(4 * time.Minute)
	if found, err := m.Resize(id, 100, 40); !found || err != nil {
		t.Fatalf("Resize = (%v, %v)", found, err)
	}
	clk.advance(4 * time.Minute)

	if n := m.sweepOnce(); n != 0 {
		t.Errorf("sweepOnce reclaimed %d sessions, want 0", n)
	}
}

func TestSweepLoopLifecycle(t *testing.T) {
	settings := DefaultSettings()
	settings.SweepInterval = time.Hour
	m, _, _ := newTestManagerWith(t, testPlatform(), settings)

	if !m.sweepRunning() {
		t.Fatal("sweep loop not running with a positive interval")
	}

	m.UpdateSettings(Settings{SweepInterval: 0})
	if m.sweepRunning() {
		t.Error("sweep loop still running after disabling")
	}

	m.UpdateSettings(Settings{
		SweepInterval: 30 * time.Minute,
		GraceTimeout:  10 * time.Minute,
		MaxSessions:   5,
	})
	if !m.sweepRunning() {
		t.Error("sweep loop not running after re-enabling")
	}
	s := m.Settings()
	if s.SweepInterval != 30*time.Minute || s.GraceTimeout != 10*time.Minute {
		t.Errorf("settings = %+v after update", s)
	}
	if s.MaxSessions != 5 {
		t.Errorf("MaxSessions = %d after update, want 5", s.MaxSessions)
	}
	if s.DefaultCols != 80 {
		t.Errorf("DefaultCols = %d, want zero-valued field left unchanged", s.DefaultCols)
	}

	m.Destroy()
	if m.sweepRunning() {
		t.Error("sweep loop still running after Destroy")
	}
}

func TestSweepDisabledNeverStarts(t *testing.T) {
	m, _, _ := newTestManager(t)
	if m.sweepRunning() {
		t.Fatal("sweep loop running despite zero interval")
	}
	// Destroy must not hang waiting for a loop that never started.
	m.Destroy()
}
