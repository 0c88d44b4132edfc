// File: notify/notify.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package notify

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/internal/wakeup"
)

// pair is the state shared by a Listener and its Notifier. The eventfd runs
// in semaphore mode so one TryTakeOne consumes exactly one notification,
// keeping the pollable count and the payload queue in lockstep.
type pair struct {
	wk *wakeup.Waker

	mu      sync.Mutex
	pending *queue.Queue
	seq     uint64
}

// Listener is the consumer half: an api.EventSource a WaitSet can attach.
type Listener struct {
	p *pair
}

// Notifier is the producer half, safe for concurrent use.
type Notifier struct {
	p *pair
}

// NewPair creates a connected Listener/Notifier pair.
func NewPair() (*Listener, *Notifier, error) {
	wk, err := wakeup.New(true)
	if err != nil {
		return nil, nil, err
	}
	p := &pair{
		wk:      wk,
		pending: queue.New(),
	}
	return &Listener{p: p}, &Notifier{p: p}, nil
}

// Notify queues payload and wakes the listener side. Ownership of payload
// transfers to the eventual taker.
func (n *Notifier) Notify(payload []byte) error {
	p := n.p
	p.mu.Lock()
	p.seq++
	p.pending.Add(api.Event{Payload: payload, Seq: p.seq})
	p.mu.Unlock()
	return p.wk.Wake()
}

// WaitHandle returns the pollable descriptor. Implements api.EventSource.
func (l *Listener) WaitHandle() uintptr {
	return uintptr(l.p.wk.Fd())
}

// TryTakeOne takes a single pending event without blocking. Implements
// api.EventSource.
func (l *Listener) TryTakeOne() (api.Event, bool) {
	ok, err := l.p.wk.TakeOne()
	if err != nil || !ok {
		return api.Event{}, false
	}
	l.p.mu.Lock()
	ev := l.p.pending.Remove().(api.Event)
	l.p.mu.Unlock()
	return ev, true
}

// Pending returns the number of queued events, for diagnostics.
func (l *Listener) Pending() int {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	return l.p.pending.Length()
}

// Close releases the underlying descriptor. The Notifier half becomes
// unusable as well.
func (l *Listener) Close() error {
	return l.p.wk.Close()
}
