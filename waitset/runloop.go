// File: waitset/runloop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Blocking run loops: batch wait, per-attachment dispatch, stop and signal
// exits.

package waitset

import (
	"time"

	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/internal/demux"
)

// Handler processes one ready attachment per invocation. It must drain the
// originating event source (loop TryTakeOne until empty) before returning;
// see the package documentation for the drain contract.
type Handler func(*AttachmentId) api.CallbackProgression

const noTimeout = time.Duration(-1)

// WaitAndProcess blocks and dispatches wakeup batches until the handler
// returns StopLoop, Stop is called, or an intercepted signal arrives. The
// returned RunResult names the terminal condition.
func (ws *WaitSet) WaitAndProcess(handler Handler) (api.RunResult, error) {
	return ws.run(handler, true, noTimeout)
}

// WaitAndProcessOnce blocks until one wakeup batch has been dispatched, then
// returns RunAllEventsHandled. Stop and signals exit as in WaitAndProcess.
func (ws *WaitSet) WaitAndProcessOnce(handler Handler) (api.RunResult, error) {
	return ws.run(handler, false, noTimeout)
}

// WaitAndProcessOnceWithTimeout behaves like WaitAndProcessOnce but gives up
// after timeout elapses with nothing ready, returning RunAllEventsHandled.
func (ws *WaitSet) WaitAndProcessOnceWithTimeout(handler Handler, timeout time.Duration) (api.RunResult, error) {
	if timeout < 0 {
		timeout = 0
	}
	return ws.run(handler, false, timeout)
}

func (ws *WaitSet) run(handler Handler, loop bool, timeout time.Duration) (api.RunResult, error) {
	if handler == nil {
		panic("waitset: nil handler")
	}
	if ws.Len() == 0 {
		return api.RunAllEventsHandled, api.ErrNoAttachments
	}

	hasTimeout := timeout >= 0
	var deadline time.Time
	if hasTimeout {
		deadline = time.Now().Add(timeout)
	}

	for {
		waitMs := demux.BlockIndefinitely
		if hasTimeout {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			// Round up so sub-millisecond remainders do not spin at 0.
			waitMs = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}

		ready, err := ws.dx.Wait(waitMs)
		if err != nil {
			return api.RunAllEventsHandled, err
		}
		if len(ready) == 0 {
			// Timeout or EINTR.
			if hasTimeout && !time.Now().Before(deadline) {
				return api.RunAllEventsHandled, nil
			}
			continue
		}
		ws.stats.wakeup()

		if result, terminal := ws.checkControlTokens(ready); terminal {
			return result, nil
		}

		dispatched := false
		var seen map[int]bool
		for _, r := range ready {
			if r.Token == tokenStop || r.Token == tokenSignal {
				continue
			}
			// A deadline attachment whose event and timeout race into the
			// same batch is ready under two tokens; dispatch it once. The
			// skipped readiness is not lost: an undrained source stays
			// level-triggered ready for the next wait.
			idx, _, _ := splitToken(r.Token)
			if seen[idx] {
				continue
			}
			prog, ok := ws.dispatch(r.Token, handler)
			if !ok {
				continue
			}
			if seen == nil {
				seen = make(map[int]bool, len(ready))
			}
			seen[idx] = true
			dispatched = true
			if prog == api.StopLoop {
				return api.RunStopRequest, nil
			}
		}

		if !loop && dispatched {
			return api.RunAllEventsHandled, nil
		}
	}
}

// checkControlTokens inspects a batch for stop and signal wakeups, which
// take precedence over attachment dispatch. The corresponding wakers are
// drained so the condition is consumed exactly once.
func (ws *WaitSet) checkControlTokens(ready []demux.Ready) (api.RunResult, bool) {
	for _, r := range ready {
		if r.Token == tokenSignal {
			_ = ws.sigWaker.Drain()
			if ws.sigKind.Load() == sigInterrupt {
				return api.RunInterrupt, true
			}
			return api.RunTerminationRequest, true
		}
	}
	for _, r := range ready {
		if r.Token == tokenStop {
			_ = ws.stopWaker.Drain()
			ws.stats.stopRequest()
			return api.RunStopRequest, true
		}
	}
	return api.RunAllEventsHandled, false
}

// dispatch validates the token against the attachment table, performs the
// per-kind timer bookkeeping, and invokes the handler with a fresh
// AttachmentId. Returns ok=false for stale or spurious wakeups.
func (ws *WaitSet) dispatch(token uint64, handler Handler) (api.CallbackProgression, bool) {
	idx, gen, timerPath := splitToken(token)

	ws.mu.Lock()
	if idx >= len(ws.slots) {
		ws.mu.Unlock()
		return api.Continue, false
	}
	s := &ws.slots[idx]
	if !s.active || s.gen != gen {
		// Detached between wakeup and dispatch.
		ws.mu.Unlock()
		return api.Continue, false
	}

	missed := false
	switch s.kind {
	case kindDeadline:
		if timerPath {
			n, err := s.timer.Ack()
			if err != nil || n == 0 {
				// Event path re-armed the timer in this same batch; the
				// stale readiness carries no expiration.
				ws.mu.Unlock()
				return api.Continue, false
			}
			missed = true
			ws.stats.deadlineMiss()
			// Next silence window starts at this timeout.
			_ = s.timer.ArmOneshot(s.deadline)
		} else {
			// Activity on the source resets the deadline.
			_ = s.timer.ArmOneshot(s.deadline)
		}
	case kindInterval:
		n, err := s.timer.Ack()
		if err != nil || n == 0 {
			ws.mu.Unlock()
			return api.Continue, false
		}
		if n > 1 {
			ws.stats.backlog(n - 1)
		}
	}
	ws.mu.Unlock()

	id := &AttachmentId{ws: ws, idx: idx, gen: gen, missed: missed, valid: true}
	ws.stats.dispatch()
	prog := handler(id)
	if !id.captured {
		id.invalidate()
	}
	return prog, true
}
