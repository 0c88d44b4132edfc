// File: waitset/stats.go
// Author: momentics <momentics@gmail.com>

package waitset

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-waitset/api"
	"github.com/momentics/hioload-waitset/control"
)

// Registry keys published when a control.Registry is wired.
const (
	MetricWakeups         = "waitset.wakeups"
	MetricDispatches      = "waitset.dispatches"
	MetricDeadlineMisses  = "waitset.deadline_misses"
	MetricIntervalBacklog = "waitset.interval_backlog"
	MetricStopRequests    = "waitset.stop_requests"
)

type stats struct {
	wakeups         atomic.Uint64
	dispatches      atomic.Uint64
	deadlineMisses  atomic.Uint64
	intervalBacklog atomic.Uint64
	stopRequests    atomic.Uint64

	metrics *control.Registry
}

func (s *stats) add(c *atomic.Uint64, key string, delta uint64) {
	c.Add(delta)
	if s.metrics != nil {
		s.metrics.Add(key, delta)
	}
}

func (s *stats) wakeup()          { s.add(&s.wakeups, MetricWakeups, 1) }
func (s *stats) dispatch()        { s.add(&s.dispatches, MetricDispatches, 1) }
func (s *stats) deadlineMiss()    { s.add(&s.deadlineMisses, MetricDeadlineMisses, 1) }
func (s *stats) backlog(n uint64) { s.add(&s.intervalBacklog, MetricIntervalBacklog, n) }
func (s *stats) stopRequest()     { s.add(&s.stopRequests, MetricStopRequests, 1) }

func (s *stats) snapshot() api.WaitSetStats {
	return api.WaitSetStats{
		Wakeups:         s.wakeups.Load(),
		Dispatches:      s.dispatches.Load(),
		DeadlineMisses:  s.deadlineMisses.Load(),
		IntervalBacklog: s.intervalBacklog.Load(),
		StopRequests:    s.stopRequests.Load(),
		CapturedAt:      time.Now(),
	}
}
