package term

import (
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// ExitStatus describes how a session's process ended.
type ExitStatus struct {
	Code   int
	Signal string // empty when the process exited normally
}

// StartOptions carries everything needed to start one shell process.
type StartOptions struct {
	ShellPath string
	Cwd       string
	Env       []string
	Cols      int
	Rows      int
	TermName  string // value for TERM, e.g. "xterm-256color"
}

// Pty is the handle for one running shell process. The Manager owns it
// exclusively; no other component may hold one.
type Pty interface {
	io.Reader
	io.Writer

	// Resize changes the terminal geometry.
	Resize(cols, rows int) error

	// Terminate asks the process to exit. It may fail if the process has
	// already exited; callers treat that as recoverable.
	Terminate() error

	// Close releases the pty file descriptor.
	Close() error

	// Pid returns the process id, or 0 if the process never started.
	Pid() int

	// Wait blocks until the process exits and returns its status.
	// It must be called exactly once.
	Wait() ExitStatus
}

// Starter starts shell processes. The real implementation uses a pty; tests
// substitute a recording fake.
type Starter interface {
	Start(opts StartOptions) (Pty, error)
}

// ptyStarter starts processes on a real pseudo-terminal via creack/pty.
type ptyStarter struct{}

// NewPtyStarter returns the Starter backed by the OS pty layer.
func NewPtyStarter() Starter {
	return ptyStarter{}
}

func (ptyStarter) Start(opts StartOptions) (Pty, error) {
	cmd := exec.Command(opts.ShellPath)
	cmd.Dir = opts.Cwd
	env := opts.Env
	if opts.TermName != "" {
		env = append(env, "TERM="+opts.TermName)
	}
	cmd.Env = env

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(opts.Cols),
		Rows: uint16(opts.Rows),
	})
	if err != nil {
		return nil, err
	}
	return &osPty{ptmx: ptmx, cmd: cmd}, nil
}

// osPty wraps the pty master file and the running command.
type osPty struct {
	ptmx *os.File
	cmd  *exec.Cmd
}

func (p *osPty) Read(b []byte) (int, error) {
	return p.ptmx.Read(b)
}

func (p *osPty) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

func (p *osPty) Resize(cols, rows int) error {
	return pty.Setsize(p.ptmx, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

func (p *osPty) Terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *osPty) Close() error {
	return p.ptmx.Close()
}

func (p *osPty) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *osPty) Wait() ExitStatus {
	err := p.cmd.Wait()
	if err == nil {
		return ExitStatus{Code: 0}
	}

	st := ExitStatus{Code: -1}
	if exitErr, ok := err.(*exec.ExitError); ok {
		st.Code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			st.Signal = ws.Signal().String()
		}
	}
	return st
}
