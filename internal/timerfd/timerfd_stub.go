//go:build !linux
// +build !linux

// File: internal/timerfd/timerfd_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package timerfd

import (
	"time"

	"github.com/momentics/hioload-waitset/api"
)

// Timer is unavailable on this platform.
type Timer struct{}

// New returns an error for unsupported platforms.
func New() (*Timer, error) {
	return nil, api.ErrNotSupported
}

func (t *Timer) Fd() int { return -1 }

func (t *Timer) ArmOneshot(d time.Duration) error { return api.ErrNotSupported }

func (t *Timer) ArmPeriodic(p time.Duration) error { return api.ErrNotSupported }

func (t *Timer) Disarm() error { return api.ErrNotSupported }

func (t *Timer) Ack() (uint64, error) { return 0, api.ErrNotSupported }

func (t *Timer) Close() error { return nil }
