// Package bridge fans terminal events out from the session manager to
// downstream surfaces. Each surface registers a Forwarder; the bridge holds
// the single pair of manager subscriptions on their behalf.
package bridge

import (
	"log/slog"
	"sync"

	"github.com/zhubert/termhub/internal/logger"
	"github.com/zhubert/termhub/internal/term"
)

// Forwarder receives terminal events destined for one downstream surface.
// Delivery failures are the forwarder's problem; the bridge does not retry.
type Forwarder interface {
	ForwardData(sessionID, data string)
	ForwardExit(sessionID string, exitCode int, signal string)
}

// EventSource is the slice of the session manager the bridge consumes.
type EventSource interface {
	OnData(term.DataFunc) (unsubscribe func())
	OnExit(term.ExitFunc) (unsubscribe func())
}

// Bridge distributes manager events to registered forwarders.
type Bridge struct {
	mu         sync.Mutex
	forwarders map[int]Forwarder
	next       int

	unsubData func()
	unsubExit func()

	log *slog.Logger
}

// New subscribes to the event source and returns a Bridge ready for
// forwarder registration. Call Close to release the subscriptions.
func New(src EventSource) *Bridge {
	b := &Bridge{
		forwarders: make(map[int]Forwarder),
		log:        logger.ComponentLogger("bridge"),
	}
	b.unsubData = src.OnData(b.fanOutData)
	b.unsubExit = src.OnExit(b.fanOutExit)
	return b
}

// Add registers a forwarder. The returned function removes it; calling it
// more than once is safe.
func (b *Bridge) Add(f Forwarder) (remove func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.forwarders[id] = f
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.forwarders, id)
	}
}

// Close unsubscribes from the event source. Registered forwarders receive
// nothing afterwards.
func (b *Bridge) Close() {
	b.unsubData()
	b.unsubExit()
}

func (b *Bridge) fanOutData(sessionID, data string) {
	for _, f := range b.snapshot() {
		f.ForwardData(sessionID, data)
	}
}

func (b *Bridge) fanOutExit(sessionID string, code int, signal string) {
	b.log.Debug("forwarding exit", "sessionID", sessionID, "code", code)
	for _, f := range b.snapshot() {
		f.ForwardExit(sessionID, code, signal)
	}
}

func (b *Bridge) snapshot() []Forwarder {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Forwarder, 0, len(b.forwarders))
	for _, f := range b.forwarders {
		out = append(out, f)
	}
	return out
}
