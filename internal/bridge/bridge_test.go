package bridge

import (
	"sync"
	"testing"

	"github.com/zhubert/termhub/internal/term"
)

// fakeSource captures the bridge's subscriptions so tests can fire events
// directly and observe unsubscription.
type fakeSource struct {
	dataFn       term.DataFunc
	exitFn       term.ExitFunc
	dataUnsubbed bool
	exitUnsubbed bool
}

func (s *fakeSource) OnData(fn term.DataFunc) func() {
	s.dataFn = fn
	return func() { s.dataUnsubbed = true }
}

func (s *fakeSource) OnExit(fn term.ExitFunc) func() {
	s.exitFn = fn
	return func() { s.exitUnsubbed = true }
}

type recordingForwarder struct {
	mu    sync.Mutex
	data  []string
	exits []string
}

func (f *recordingForwarder) ForwardData(sessionID, data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = append(f.data, sessionID+":"+data)
}

func (f *recordingForwarder) ForwardExit(sessionID string, code int, signal string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits = append(f.exits, sessionID)
}

func (f *recordingForwarder) dataCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func TestBridgeFansOutToAllForwarders(t *testing.T) {
	src := &fakeSource{}
	b := New(src)
	defer b.Close()

	first := &recordingForwarder{}
	second := &recordingForwarder{}
	b.Add(first)
	b.Add(second)

	src.dataFn("term-1-0", "hello")
	src.exitFn("term-1-0", 0, "")

	for i, f := range []*recordingForwarder{first, second} {
		if f.dataCount() != 1 || f.data[0] != "term-1-0:hello" {
			t.Errorf("forwarder %d data = %v, want one term-1-0:hello", i, f.data)
		}
		if len(f.exits) != 1 || f.exits[0] != "term-1-0" {
			t.Errorf("forwarder %d exits = %v, want one term-1-0", i, f.exits)
		}
	}
}

func TestBridgeRemoveForwarder(t *testing.T) {
	src := &fakeSource{}
	b := New(src)
	defer b.Close()

	kept := &recordingForwarder{}
	dropped := &recordingForwarder{}
	b.Add(kept)
	remove := b.Add(dropped)

	remove()
	remove() // second call is a no-op

	src.dataFn("term-1-0", "x")
	if kept.dataCount() != 1 {
		t.Errorf("kept forwarder got %d events, want 1", kept.dataCount())
	}
	if dropped.dataCount() != 0 {
		t.Errorf("removed forwarder got %d events, want 0", dropped.dataCount())
	}
}

func TestBridgeCloseUnsubscribes(t *testing.T) {
	src := &fakeSource{}
	b := New(src)
	b.Close()

	if !src.dataUnsubbed || !src.exitUnsubbed {
		t.Errorf("Close left subscriptions live: data=%v exit=%v",
			src.dataUnsubbed, src.exitUnsubbed)
	}
}
