// Package shell resolves shell names to executable paths.
//
// Resolution is advisory: every lookup degrades to nil rather than an error,
// and callers treat an unresolved name as a literal executable path. All OS
// access goes through platform.Platform so resolution is testable without
// touching the real filesystem or environment.
package shell

import (
	"path/filepath"

	"github.com/zhubert/termhub/internal/platform"
)

// Info describes one resolved shell.
type Info struct {
	Name string // short name, e.g. "zsh" or "cmd.exe"
	Path string // absolute executable path
}

// candidate is one entry in the per-platform lookup table.
type candidate struct {
	name  string
	paths []string
}

// unixCandidates covers linux and darwin. Order matters: the first existing
// path wins for a given name.
var unixCandidates = []candidate{
	{name: "bash", paths: []string{"/bin/bash", "/usr/bin/bash", "/usr/local/bin/bash", "/opt/homebrew/bin/bash"}},
	{name: "zsh", paths: []string{"/bin/zsh", "/usr/bin/zsh", "/usr/local/bin/zsh", "/opt/homebrew/bin/zsh"}},
	{name: "fish", paths: []string{"/usr/bin/fish", "/usr/local/bin/fish", "/opt/homebrew/bin/fish"}},
	{name: "sh", paths: []string{"/bin/sh", "/usr/bin/sh"}},
}

var windowsCandidates = []candidate{
	{name: "cmd.exe", paths: []string{`C:\Windows\System32\cmd.exe`}},
	{name: "powershell.exe", paths: []string{`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`}},
	{name: "pwsh.exe", paths: []string{`C:\Program Files\PowerShell\7\pwsh.exe`}},
}

// Resolver looks up shells against the platform's candidate table.
type Resolver struct {
	plat platform.Platform
}

// NewResolver creates a Resolver using the given platform capability.
func NewResolver(plat platform.Platform) *Resolver {
	return &Resolver{plat: plat}
}

// ResolveDefault returns the platform default shell: $SHELL on unix-likes,
// %COMSPEC% on Windows with cmd.exe as a hard fallback. Returns nil only
// when no sensible default exists.
func (r *Resolver) ResolveDefault() *Info {
	if r.plat.OS() == "windows" {
		if comspec := r.plat.Getenv("COMSPEC"); comspec != "" {
			return &Info{Name: filepath.Base(comspec), Path: comspec}
		}
		return &Info{Name: "cmd.exe", Path: `C:\Windows\System32\cmd.exe`}
	}

	if sh := r.plat.Getenv("SHELL"); sh != "" {
		return &Info{Name: filepath.Base(sh), Path: sh}
	}

	// SHELL unset is rare but possible (cron, minimal containers).
	if r.plat.PathExists("/bin/sh") {
		return &Info{Name: "sh", Path: "/bin/sh"}
	}
	return nil
}

// ResolveByName looks up a named shell among the platform candidates that
// exist on disk. Returns nil when the name is unknown or none of its
// candidate paths exist; the caller falls back to treating the name as a
// literal executable path.
func (r *Resolver) ResolveByName(name string) *Info {
	for _, c := range r.candidates() {
		if c.name != name {
			continue
		}
		for _, p := range c.paths {
			if r.plat.PathExists(p) {
				return &Info{Name: c.name, Path: p}
			}
		}
	}
	return nil
}

// ListAvailable returns all candidate shells that exist on disk,
// deduplicated by name.
func (r *Resolver) ListAvailable() []Info {
	var out []Info
	seen := make(map[string]bool)
	for _, c := range r.candidates() {
		if seen[c.name] {
			continue
		}
		for _, p := range c.paths {
			if r.plat.PathExists(p) {
				out = append(out, Info{Name: c.name, Path: p})
				seen[c.name] = true
				break
			}
		}
	}
	return out
}

func (r *Resolver) candidates() []candidate {
	if r.plat.OS() == "windows" {
		return windowsCandidates
	}
	return unixCandidates
}
