// Package term is the terminal session lifecycle manager.
//
// # Overview
//
// A Session is one live OS shell process running on a pseudo-terminal. The
// Manager owns every session exclusively: it spawns them, routes their input
// and output, enforces a global cap on how many may run at once, and reclaims
// sessions that no UI surface references any longer.
//
// # Session Lifecycle
//
// 1. Spawn: the shell is resolved (explicit name first, platform default
// otherwise, unresolved names passed through as literal paths), the
// environment overlay is merged onto the inherited environment, and the
// process is started on a pty. The session is registered with a fresh
// identifier derived from a monotonic counter and a timestamp.
//
// 2. Running: output read from the pty is fanned out to every registered
// data subscriber; writes and resizes refresh the activity timestamp.
//
// 3. Removal: an explicit Kill, a natural process exit, and the orphan sweep
// all converge on the same idempotent removal path. The exit event is
// delivered once, after all of the session's data events.
//
// # Orphan Sweep
//
// Every sweep interval the manager scans live sessions and reclaims those
// that have zero observer references AND whose last activity is older than
// the grace timeout. Observer references are opaque tokens registered by UI
// surfaces; a session a surface still displays is never reclaimed, and an
// observerless session doing recent work (a long build, say) is not either.
//
// # Concurrency
//
// The registry is guarded by a single mutex; all mutation happens in Manager
// methods. Per-session read and wait goroutines only touch the registry
// through those methods. Event callbacks are invoked without the lock held,
// so subscribers may call back into the Manager freely.
package term
