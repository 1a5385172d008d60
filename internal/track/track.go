// Package track derives auxiliary per-session state: the working directory
// of the shell process, the git status of that directory, and final exit
// codes. Trackers only read; the session manager stays the sole owner of
// session state.
package track
