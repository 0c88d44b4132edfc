// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import "time"

// SignalHandlingMode selects which process signals a WaitSet intercepts
// while blocked in a wait call.
type SignalHandlingMode int

const (
	// SignalHandlingDisabled leaves process signals untouched.
	SignalHandlingDisabled SignalHandlingMode = iota
	// SignalHandlingTermination intercepts SIGTERM.
	SignalHandlingTermination
	// SignalHandlingInterrupt intercepts SIGINT.
	SignalHandlingInterrupt
	// SignalHandlingTerminationAndInterrupt intercepts both SIGTERM and SIGINT.
	SignalHandlingTerminationAndInterrupt
)

func (m SignalHandlingMode) String() string {
	switch m {
	case SignalHandlingDisabled:
		return "disabled"
	case SignalHandlingTermination:
		return "termination"
	case SignalHandlingInterrupt:
		return "interrupt"
	case SignalHandlingTerminationAndInterrupt:
		return "termination+interrupt"
	default:
		return "unknown"
	}
}

// RunResult reports why a run-loop call returned.
type RunResult int

const (
	// RunAllEventsHandled means the bounded variant finished its batch or
	// its timeout elapsed with nothing ready.
	RunAllEventsHandled RunResult = iota
	// RunStopRequest means Stop was called, or the handler asked to stop.
	RunStopRequest
	// RunTerminationRequest means SIGTERM arrived while waiting.
	RunTerminationRequest
	// RunInterrupt means SIGINT arrived while waiting.
	RunInterrupt
)

func (r RunResult) String() string {
	switch r {
	case RunAllEventsHandled:
		return "all-events-handled"
	case RunStopRequest:
		return "stop-request"
	case RunTerminationRequest:
		return "termination-request"
	case RunInterrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// CallbackProgression is returned by run-loop handlers to either keep the
// loop running or terminate it.
type CallbackProgression int

const (
	// Continue keeps the run loop going after the current dispatch.
	Continue CallbackProgression = iota
	// StopLoop terminates the run loop once the handler returns.
	StopLoop
)

// WaitSetStats is a snapshot of a WaitSet's internal counters.
type WaitSetStats struct {
	Wakeups         uint64 // blocking waits that returned with work
	Dispatches      uint64 // handler invocations
	DeadlineMisses  uint64 // deadline attachments that fired on the timeout path
	IntervalBacklog uint64 // interval expirations coalesced into single dispatches
	StopRequests    uint64 // observed Stop wakeups
	CapturedAt      time.Time
}
