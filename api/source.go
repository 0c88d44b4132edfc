// File: api/source.go
// Package api defines the EventSource contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Event is a single unit of work taken from an EventSource. The payload is
// owned by the receiver once taken; Seq is a per-source monotonic counter
// assigned by the producing side.
type Event struct {
	Payload []byte
	Seq     uint64
}

// EventSource is any object with an OS-level pollable wait primitive and a
// non-blocking drain operation. The transport layer (listeners, completion
// queues) supplies these; the WaitSet only multiplexes them.
type EventSource interface {
	// WaitHandle returns the pollable file descriptor backing this source.
	// The handle must remain stable for the lifetime of the source.
	WaitHandle() uintptr

	// TryTakeOne takes a single pending event without blocking. The second
	// return value is false when nothing is pending. Handlers loop this
	// until it reports empty; see the run-loop drain contract in package
	// waitset.
	TryTakeOne() (Event, bool)
}
