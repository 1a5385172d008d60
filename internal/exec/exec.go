// Package exec provides a swappable command executor so packages that shell
// out (git reads, process inspection) can be tested without running real
// commands.
package exec

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandExecutor runs external commands in a working directory.
type CommandExecutor interface {
	// Run executes a command and returns stdout and stderr separately.
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns its stdout.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// CombinedOutput executes a command and returns combined stdout+stderr.
	CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// RealExecutor runs commands with os/exec.
type RealExecutor struct{}

// NewRealExecutor returns an executor backed by os/exec.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

func (e *RealExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return []byte(stdout.String()), []byte(stderr.String()), err
}

func (e *RealExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

func (e *RealExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// MockResponse is a canned result for one command in a MockExecutor.
type MockResponse struct {
	Output []byte
	Err    error
}

// Call records one command the MockExecutor was asked to run.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// MockExecutor returns canned responses keyed by the command line, and
// records every call. Commands with no canned response return empty output.
type MockExecutor struct {
	mu        sync.Mutex
	Responses map[string]MockResponse
	Calls     []Call
}

// NewMockExecutor creates a MockExecutor with no canned responses.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{Responses: make(map[string]MockResponse)}
}

// Respond registers a canned response for a command line, e.g.
// m.Respond("git rev-parse --abbrev-ref HEAD", []byte("main\n"), nil).
func (m *MockExecutor) Respond(cmdline string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[cmdline] = MockResponse{Output: output, Err: err}
}

// CallCount returns the number of commands executed so far.
func (m *MockExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockExecutor) lookup(dir, name string, args []string) MockResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, Call{Dir: dir, Name: name, Args: args})
	key := name
	if len(args) > 0 {
		key = fmt.Sprintf("%s %s", name, strings.Join(args, " "))
	}
	return m.Responses[key]
}

func (m *MockExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	resp := m.lookup(dir, name, args)
	return resp.Output, nil, resp.Err
}

func (m *MockExecutor) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	resp := m.lookup(dir, name, args)
	return resp.Output, resp.Err
}

func (m *MockExecutor) CombinedOutput(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	resp := m.lookup(dir, name, args)
	return resp.Output, resp.Err
}
