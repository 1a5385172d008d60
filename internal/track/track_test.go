package track

import (
	"context"
	"fmt"
	"testing"

	"github.com/zhubert/termhub/internal/exec"
	"github.com/zhubert/termhub/internal/platform"
	"github.com/zhubert/termhub/internal/term"
)

func TestCwdLinux(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("readlink /proc/1234/cwd", []byte("/home/tester/project\n"), nil)
	tracker := NewCwdTracker(mock, &platform.Mock{GOOS: "linux"})

	cwd, err := tracker.Cwd(context.Background(), 1234)
	if err != nil {
		t.Fatalf("Cwd failed: %v", err)
	}
	if cwd != "/home/tester/project" {
		t.Errorf("Cwd = %q, want /home/tester/project", cwd)
	}
}

func TestCwdDarwin(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("lsof -a -p 1234 -d cwd -Fn",
		[]byte("p1234\nfcwd\nn/Users/tester/project\n"), nil)
	tracker := NewCwdTracker(mock, &platform.Mock{GOOS: "darwin"})

	cwd, err := tracker.Cwd(context.Background(), 1234)
	if err != nil {
		t.Fatalf("Cwd failed: %v", err)
	}
	if cwd != "/Users/tester/project" {
		t.Errorf("Cwd = %q, want /Users/tester/project", cwd)
	}
}

func TestCwdInvalidPid(t *testing.T) {
	mock := exec.NewMockExecutor()
	tracker := NewCwdTracker(mock, &platform.Mock{GOOS: "linux"})

	if _, err := tracker.Cwd(context.Background(), 0); err == nil {
		t.Error("Cwd(0) returned nil error")
	}
	if mock.CallCount() != 0 {
		t.Errorf("invalid pid ran %d commands, want 0", mock.CallCount())
	}
}

func TestCwdCommandFailure(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("readlink /proc/99/cwd", nil, fmt.Errorf("no such process"))
	tracker := NewCwdTracker(mock, &platform.Mock{GOOS: "linux"})

	if _, err := tracker.Cwd(context.Background(), 99); err == nil {
		t.Error("Cwd of dead pid returned nil error")
	}
}

func TestGitInfo(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("git rev-parse --abbrev-ref HEAD", []byte("feature/sweep\n"), nil)
	mock.Respond("git status --porcelain", []byte(" M manager.go\n"), nil)
	tracker := NewGitTracker(mock)

	info, err := tracker.Info(context.Background(), "/home/tester/project")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Branch != "feature/sweep" {
		t.Errorf("Branch = %q, want feature/sweep", info.Branch)
	}
	if !info.Dirty {
		t.Error("Dirty = false with modified files")
	}
}

func TestGitInfoClean(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("git rev-parse --abbrev-ref HEAD", []byte("main\n"), nil)
	mock.Respond("git status --porcelain", []byte("\n"), nil)
	tracker := NewGitTracker(mock)

	info, err := tracker.Info(context.Background(), "/home/tester/project")
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}
	if info.Dirty {
		t.Error("Dirty = true with empty porcelain output")
	}
}

func TestGitInfoNotARepo(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("git rev-parse --abbrev-ref HEAD", nil,
		fmt.Errorf("fatal: not a git repository"))
	tracker := NewGitTracker(mock)

	if _, err := tracker.Info(context.Background(), "/tmp"); err == nil {
		t.Error("Info outside a repo returned nil error")
	}
}

func TestIsRepo(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.Respond("git rev-parse --is-inside-work-tree", []byte("true\n"), nil)
	if !NewGitTracker(mock).IsRepo(context.Background(), "/home/tester/project") {
		t.Error("IsRepo = false for a work tree")
	}

	bare := exec.NewMockExecutor()
	bare.Respond("git rev-parse --is-inside-work-tree", nil,
		fmt.Errorf("fatal: not a git repository"))
	if NewGitTracker(bare).IsRepo(context.Background(), "/tmp") {
		t.Error("IsRepo = true outside a repo")
	}
}

// fakeExitSource lets the test fire exit events directly.
type fakeExitSource struct {
	fn       term.ExitFunc
	unsubbed bool
}

func (s *fakeExitSource) OnExit(fn term.ExitFunc) func() {
	s.fn = fn
	return func() { s.unsubbed = true }
}

func TestExitTracker(t *testing.T) {
	src := &fakeExitSource{}
	tracker := NewExitTracker(src)

	if _, ok := tracker.Status("term-1-0"); ok {
		t.Error("Status reported an exit before any event")
	}

	src.fn("term-1-0", 130, "interrupt")
	st, ok := tracker.Status("term-1-0")
	if !ok {
		t.Fatal("Status missing after exit event")
	}
	if st.Code != 130 || st.Signal != "interrupt" {
		t.Errorf("Status = %+v, want code 130 signal interrupt", st)
	}

	tracker.Close()
	if !src.unsubbed {
		t.Error("Close left the subscription live")
	}
	// Recorded statuses survive Close.
	if _, ok := tracker.Status("term-1-0"); !ok {
		t.Error("Status lost after Close")
	}
}
