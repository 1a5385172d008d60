// Package platform abstracts the handful of OS facts the shell resolver and
// session manager depend on. Everything side-effectful (environment lookups,
// filesystem existence checks) goes through the Platform interface so tests
// can run against a fixed, fake OS.
package platform

import (
	"os"
	"runtime"
)

// Platform is the capability interface for OS-dependent lookups.
type Platform interface {
	// OS returns the GOOS-style platform name ("linux", "darwin", "windows").
	OS() string

	// HomeDir returns the current user's home directory, or "" if it cannot
	// be determined.
	HomeDir() string

	// Getenv returns the value of an environment variable, "" if unset.
	Getenv(key string) string

	// PathExists reports whether a file exists at the given path.
	PathExists(path string) bool
}

// Real is the Platform backed by the actual OS.
type Real struct{}

// NewReal returns a Platform backed by the running OS.
func NewReal() Real {
	return Real{}
}

func (Real) OS() string {
	return runtime.GOOS
}

func (Real) HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

func (Real) Getenv(key string) string {
	return os.Getenv(key)
}

func (Real) PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Mock is a Platform with fixed answers, for tests.
type Mock struct {
	GOOS  string
	Home  string
	Env   map[string]string
	Paths map[string]bool
}

func (m *Mock) OS() string {
	return m.GOOS
}

func (m *Mock) HomeDir() string {
	return m.Home
}

func (m *Mock) Getenv(key string) string {
	return m.Env[key]
}

func (m *Mock) PathExists(path string) bool {
	return m.Paths[path]
}
