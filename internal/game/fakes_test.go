package game

import (
	"cmp"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/cwbudde/quantum-sounds/engine"
)

type engineCall struct {
	op   string
	kind engine.Kind
	p    engine.Params
	bias float64
}

type fakeEngine struct {
	mu    sync.Mutex
	inits int
	calls []engineCall
}

func (f *fakeEngine) Init() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inits++
}

func (f *fakeEngine) SetBalance(bias float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, engineCall{op: "balance", bias: bias})
}

func (f *fakeEngine) StartVoice(kind engine.Kind, p engine.Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, engineCall{op: "start", kind: kind, p: p})
	return nil
}

func (f *fakeEngine) PlayOneShot(kind engine.Kind, p engine.Params) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, engineCall{op: "oneshot", kind: kind, p: p})
	return nil
}

func (f *fakeEngine) last(op string) (engineCall, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == op {
			return f.calls[i], true
		}
	}
	return engineCall{}, false
}

func (f *fakeEngine) count(op string, kind engine.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.op == op && c.kind == kind {
			n++
		}
	}
	return n
}

type utterance struct {
	text     string
	priority bool
	done     func()
}

type fakeNarrator struct {
	mu    sync.Mutex
	items []utterance
}

func (n *fakeNarrator) Say(text string, priority bool, onComplete func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, utterance{text: text, priority: priority, done: onComplete})
}

func (n *fakeNarrator) texts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.items))
	for i, it := range n.items {
		out[i] = it.text
	}
	return out
}

func (n *fakeNarrator) last() utterance {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return utterance{}
	}
	return n.items[len(n.items)-1]
}

func (n *fakeNarrator) said(text string) bool {
	return slices.Contains(n.texts(), text)
}

// complete finishes the latest utterance of text, running its callback.
func (n *fakeNarrator) complete(t *testing.T, text string) {
	t.Helper()
	n.mu.Lock()
	var done func()
	for i := len(n.items) - 1; i >= 0; i-- {
		if n.items[i].text == text {
			done = n.items[i].done
			n.items[i].done = nil
			break
		}
	}
	n.mu.Unlock()
	if done == nil {
		t.Fatalf("no pending completion for %q; said %q", text, n.texts())
	}
	done()
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualHandle struct {
	c *manualClock
	t *manualTimer
}

func (h manualHandle) Stop() bool {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.t.fired || h.t.stopped {
		return false
	}
	h.t.stopped = true
	return true
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return manualHandle{c: c, t: t}
}

// Advance moves time forward and fires due timers in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	slices.SortStableFunc(due, func(a, b *manualTimer) int {
		return cmp.Compare(a.at, b.at)
	})
	for _, t := range due {
		t.f()
	}
}
