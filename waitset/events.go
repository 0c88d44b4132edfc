// File: waitset/events.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Pull-based adapter over the callback run loop. A worker goroutine runs one
// wakeup batch per pull and hands exactly one ready attachment to the
// consumer, who drains the source and closes the event before the worker
// waits again. Stopping after the first ready attachment trades batch
// dispatch efficiency for a hard guarantee: the consumer, not the worker,
// drains sources it owns the semantics for.

package waitset

import (
	"context"
	"sync"
	"time"

	"github.com/momentics/hioload-waitset/api"
)

// WaitSetEvent is one element of the pull stream. Regular elements carry an
// AttachmentId; the final element of a stream ended by a signal, an external
// Stop, or an error is terminal and carries the RunResult or error instead.
//
// The consumer must drain the originating source and call Close before
// pulling again; the worker does not wait again until the event is closed.
type WaitSetEvent struct {
	id     *AttachmentId
	result api.RunResult
	err    error

	done      chan struct{}
	closeOnce sync.Once
}

// Id returns the dispatch token, or nil for terminal events.
func (e *WaitSetEvent) Id() *AttachmentId { return e.id }

// Terminal reports whether this is the final element of the stream.
func (e *WaitSetEvent) Terminal() bool { return e.id == nil }

// Result returns the terminal condition of a terminal event.
func (e *WaitSetEvent) Result() api.RunResult { return e.result }

// Err returns the error that ended the stream, if any.
func (e *WaitSetEvent) Err() error { return e.err }

// Close releases the event: the AttachmentId is invalidated and the worker
// may begin the next wait. Idempotent.
func (e *WaitSetEvent) Close() {
	e.closeOnce.Do(func() {
		if e.id != nil {
			e.id.invalidate()
		}
		if e.done != nil {
			close(e.done)
		}
	})
}

// Events converts the run loop into a pull-based stream. The channel yields
// one ready attachment per pull; the consumer must Close each event after
// draining its source. Cancelling ctx ends the stream gracefully (the
// channel closes with no terminal element) and calls Stop so an in-flight
// blocking wait is released promptly. An intercepted signal or an explicit
// Stop from elsewhere ends the stream with a terminal element carrying the
// RunResult. The stream is not restartable; build a new one instead.
func (ws *WaitSet) Events(ctx context.Context) <-chan *WaitSetEvent {
	out := make(chan *WaitSetEvent, 1)

	go func() {
		defer close(out)

		workerDone := make(chan struct{})
		defer close(workerDone)
		go func() {
			select {
			case <-ctx.Done():
				ws.Stop()
			case <-workerDone:
			}
		}()

		for {
			if ctx.Err() != nil {
				return
			}

			var ev *WaitSetEvent
			result, err := ws.WaitAndProcessOnce(func(id *AttachmentId) api.CallbackProgression {
				id.capture()
				ev = &WaitSetEvent{id: id, done: make(chan struct{})}
				return api.StopLoop
			})
			if err != nil {
				out <- &WaitSetEvent{err: err, result: result}
				return
			}

			if ev != nil {
				select {
				case out <- ev:
				case <-ctx.Done():
					ev.Close()
					return
				}
				select {
				case <-ev.done:
				case <-ctx.Done():
					return
				}
				continue
			}

			switch result {
			case api.RunStopRequest:
				if ctx.Err() != nil {
					// Cooperative cancellation; end without a terminal element.
					return
				}
				out <- &WaitSetEvent{result: result}
				return
			case api.RunTerminationRequest, api.RunInterrupt:
				out <- &WaitSetEvent{result: result}
				return
			default:
				// Spurious batch (stale attachments); wait again.
			}
		}
	}()

	return out
}

// EventsWithTimeout is Events bounded by d: the stream ends gracefully once
// d elapses, composing a deadline context over the plain form.
func (ws *WaitSet) EventsWithTimeout(ctx context.Context, d time.Duration) <-chan *WaitSetEvent {
	tctx, cancel := context.WithTimeout(ctx, d)
	inner := ws.Events(tctx)
	out := make(chan *WaitSetEvent, 1)
	go func() {
		defer cancel()
		defer close(out)
		for ev := range inner {
			out <- ev
		}
	}()
	return out
}
