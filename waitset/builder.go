// File: waitset/builder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package waitset

import (
	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/control"
	"github.com/momentics/hioload-waitset/internal/demux"
	"github.com/momentics/hioload-waitset/internal/wakeup"
)

// Builder configures and creates a WaitSet. Builders are single-use: after
// Create succeeds or fails, further Create calls return an error.
type Builder struct {
	sigMode  api.SignalHandlingMode
	capacity int
	metrics  *control.Registry
	consumed bool
}

// NewBuilder returns a builder with signal handling disabled and the default
// capacity.
func NewBuilder() *Builder {
	return &Builder{
		sigMode:  api.SignalHandlingDisabled,
		capacity: DefaultCapacity,
	}
}

// SignalHandling selects which process signals the WaitSet intercepts while
// blocked.
func (b *Builder) SignalHandling(m api.SignalHandlingMode) *Builder {
	b.sigMode = m
	return b
}

// Capacity sets the fixed attachment capacity. Non-positive values fall back
// to DefaultCapacity.
func (b *Builder) Capacity(n int) *Builder {
	b.capacity = n
	return b
}

// Metrics wires a control.Registry the WaitSet publishes its counters into.
func (b *Builder) Metrics(r *control.Registry) *Builder {
	b.metrics = r
	return b
}

// Create consumes the builder and yields a WaitSet.
func (b *Builder) Create() (*WaitSet, error) {
	if b.consumed {
		return nil, api.ErrInternal.WithContext("reason", "builder already consumed")
	}
	b.consumed = true

	capacity := b.capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	dx, err := demux.New()
	if err != nil {
		return nil, err
	}
	stopWaker, err := wakeup.New(false)
	if err != nil {
		_ = dx.Close()
		return nil, err
	}

	ws := &WaitSet{
		dx:        dx,
		sigMode:   b.sigMode,
		slots:     make([]slot, capacity),
		stopWaker: stopWaker,
	}
	ws.stats.metrics = b.metrics

	if err := dx.Add(stopWaker.Fd(), tokenStop); err != nil {
		_ = stopWaker.Close()
		_ = dx.Close()
		return nil, err
	}

	if b.sigMode != api.SignalHandlingDisabled {
		sigWaker, err := wakeup.New(false)
		if err != nil {
			_ = stopWaker.Close()
			_ = dx.Close()
			return nil, err
		}
		if err := dx.Add(sigWaker.Fd(), tokenSignal); err != nil {
			_ = sigWaker.Close()
			_ = stopWaker.Close()
			_ = dx.Close()
			return nil, err
		}
		ws.sigWaker = sigWaker
		ws.startSignalWatcher()
	}

	return ws, nil
}
