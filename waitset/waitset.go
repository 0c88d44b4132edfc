// File: waitset/waitset.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// WaitSet core: attachment table, attach operations, stop and signal plumbing.

package waitset

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/internal/demux"
	"github.com/momentics/hioload-waitset/internal/timerfd"
	"github.com/momentics/hioload-waitset/internal/wakeup"
)

// DefaultCapacity is used when the builder does not set one.
const DefaultCapacity = 64

// Reserved wakeup tokens; attachment tokens never collide with these because
// slot indices are bounded by capacity, far below 2^31.
const (
	tokenStop   = ^uint64(0)
	tokenSignal = ^uint64(0) - 1

	timerPathBit = uint64(1) << 63
)

func makeToken(idx int, gen uint32, timerPath bool) uint64 {
	t := uint64(gen)<<32 | uint64(uint32(idx))
	if timerPath {
		t |= timerPathBit
	}
	return t
}

func splitToken(t uint64) (idx int, gen uint32, timerPath bool) {
	timerPath = t&timerPathBit != 0
	t &^= timerPathBit
	return int(uint32(t)), uint32(t >> 32), timerPath
}

type attachKind int

const (
	kindNotification attachKind = iota
	kindDeadline
	kindInterval
)

// slot is one entry in the attachment table. gen increments on every detach
// so stale Guards and AttachmentIds are detectable.
type slot struct {
	gen      uint32
	active   bool
	kind     attachKind
	src      api.EventSource
	srcFd    int
	timer    *timerfd.Timer
	deadline time.Duration
}

const (
	sigNone int32 = iota
	sigTermination
	sigInterrupt
)

// WaitSet multiplexes event sources, deadlines and intervals behind a single
// blocking wait. Attach and Guard.Release are safe to call while another
// goroutine is blocked in a run loop; Stop is safe from any goroutine
// including the handler itself.
type WaitSet struct {
	dx      *demux.Demux
	sigMode api.SignalHandlingMode

	mu     sync.Mutex
	slots  []slot
	count  int
	closed bool

	stopWaker *wakeup.Waker
	sigWaker  *wakeup.Waker
	sigCh     chan os.Signal
	sigKind   atomic.Int32

	stats stats
}

// Capacity returns the fixed attachment capacity.
func (ws *WaitSet) Capacity() int {
	return len(ws.slots)
}

// Len returns the number of active attachments.
func (ws *WaitSet) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.count
}

// IsEmpty reports whether no attachments are active.
func (ws *WaitSet) IsEmpty() bool {
	return ws.Len() == 0
}

// SignalHandlingMode returns the mode chosen at build time.
func (ws *WaitSet) SignalHandlingMode() api.SignalHandlingMode {
	return ws.sigMode
}

// AttachNotification registers src for readiness notification and returns
// the Guard owning the registration. The same source (by wait handle) cannot
// be attached twice.
func (ws *WaitSet) AttachNotification(src api.EventSource) (*Guard, error) {
	return ws.attach(kindNotification, src, 0)
}

// AttachDeadline registers src like AttachNotification and additionally arms
// a deadline of d. Whichever fires first is reported; AttachmentId's
// MissedDeadline distinguishes the timeout path. The deadline re-arms from
// the last wakeup on this attachment, event or timeout, so it measures
// silence since the last activity.
func (ws *WaitSet) AttachDeadline(src api.EventSource, d time.Duration) (*Guard, error) {
	return ws.attach(kindDeadline, src, d)
}

// AttachInterval arms a repeating timer with no event source; it fires every
// p elapsed. Expirations the process slept through are coalesced into one
// dispatch, with the backlog surfaced via Stats.
func (ws *WaitSet) AttachInterval(p time.Duration) (*Guard, error) {
	return ws.attach(kindInterval, nil, p)
}

func (ws *WaitSet) attach(kind attachKind, src api.EventSource, d time.Duration) (*Guard, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.closed {
		return nil, api.ErrInternal.WithContext("reason", "waitset closed")
	}
	if ws.count >= len(ws.slots) {
		return nil, api.ErrInsufficientCapacity.WithContext("capacity", len(ws.slots))
	}
	if src != nil {
		for i := range ws.slots {
			s := &ws.slots[i]
			if s.active && s.src != nil && s.src.WaitHandle() == src.WaitHandle() {
				return nil, api.ErrAlreadyAttached.WithContext("handle", src.WaitHandle())
			}
		}
	}

	idx := -1
	for i := range ws.slots {
		if !ws.slots[i].active {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, api.ErrInsufficientCapacity.WithContext("capacity", len(ws.slots))
	}

	s := &ws.slots[idx]
	s.kind = kind
	s.src = src
	s.deadline = d
	s.timer = nil
	s.srcFd = -1

	if src != nil {
		s.srcFd = int(src.WaitHandle())
		if err := ws.dx.Add(s.srcFd, makeToken(idx, s.gen, false)); err != nil {
			return nil, err
		}
	}

	if kind == kindDeadline || kind == kindInterval {
		timer, err := timerfd.New()
		if err != nil {
			ws.rollbackAttach(s)
			return nil, err
		}
		if kind == kindDeadline {
			err = timer.ArmOneshot(d)
		} else {
			err = timer.ArmPeriodic(d)
		}
		if err == nil {
			err = ws.dx.Add(timer.Fd(), makeToken(idx, s.gen, true))
		}
		if err != nil {
			_ = timer.Close()
			ws.rollbackAttach(s)
			return nil, err
		}
		s.timer = timer
	}

	s.active = true
	ws.count++
	return &Guard{ws: ws, idx: idx, gen: s.gen}, nil
}

// rollbackAttach undoes a partially wired slot. Caller holds ws.mu.
func (ws *WaitSet) rollbackAttach(s *slot) {
	if s.srcFd >= 0 {
		_ = ws.dx.Delete(s.srcFd)
	}
	s.src = nil
	s.srcFd = -1
}

// detachLocked tears down slot idx and bumps its generation. Caller holds
// ws.mu and has verified the slot is active.
func (ws *WaitSet) detachLocked(idx int) {
	s := &ws.slots[idx]
	if s.srcFd >= 0 {
		_ = ws.dx.Delete(s.srcFd)
	}
	if s.timer != nil {
		_ = ws.dx.Delete(s.timer.Fd())
		_ = s.timer.Close()
	}
	s.active = false
	s.src = nil
	s.srcFd = -1
	s.timer = nil
	s.gen++
	ws.count--
}

// Stop wakes the current or next blocking wait, making it return
// RunStopRequest promptly. Idempotent and safe from any goroutine, including
// from inside a run-loop handler.
func (ws *WaitSet) Stop() {
	_ = ws.stopWaker.Wake()
}

// Close releases the WaitSet: remaining attachments are force-detached, the
// signal watcher is stopped, and all descriptors owned by the WaitSet are
// closed. Guards must be released and run loops stopped before Close;
// releasing a Guard afterwards panics.
func (ws *WaitSet) Close() error {
	ws.mu.Lock()
	if ws.closed {
		ws.mu.Unlock()
		return nil
	}
	ws.closed = true
	for i := range ws.slots {
		if ws.slots[i].active {
			ws.detachLocked(i)
		}
	}
	ws.mu.Unlock()

	if ws.sigCh != nil {
		signal.Stop(ws.sigCh)
		close(ws.sigCh)
	}
	if ws.sigWaker != nil {
		_ = ws.sigWaker.Close()
	}
	_ = ws.stopWaker.Close()
	return ws.dx.Close()
}

// Stats returns a snapshot of the internal counters.
func (ws *WaitSet) Stats() api.WaitSetStats {
	return ws.stats.snapshot()
}

// startSignalWatcher forwards intercepted process signals into the wait via
// the signal waker. Runs until Close stops the signal channel.
func (ws *WaitSet) startSignalWatcher() {
	var sigs []os.Signal
	switch ws.sigMode {
	case api.SignalHandlingTermination:
		sigs = []os.Signal{syscall.SIGTERM}
	case api.SignalHandlingInterrupt:
		sigs = []os.Signal{syscall.SIGINT}
	case api.SignalHandlingTerminationAndInterrupt:
		sigs = []os.Signal{syscall.SIGTERM, syscall.SIGINT}
	default:
		return
	}

	ws.sigCh = make(chan os.Signal, 4)
	signal.Notify(ws.sigCh, sigs...)
	go func() {
		for sig := range ws.sigCh {
			if sig == syscall.SIGTERM {
				ws.sigKind.Store(sigTermination)
			} else {
				ws.sigKind.Store(sigInterrupt)
			}
			_ = ws.sigWaker.Wake()
		}
	}()
}
