//go:build linux
// +build linux

// File: internal/timerfd/timerfd_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timerfd

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-waitset/api"
)

// Timer is a nonblocking CLOCK_MONOTONIC timerfd.
type Timer struct {
	fd int
}

// New creates a disarmed timer.
func New() (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_NONBLOCK|unix.TFD_CLOEXEC)
	if err != nil {
		return nil, api.WrapError(api.ErrCodeInsufficientResources, "timerfd create", err)
	}
	return &Timer{fd: fd}, nil
}

// Fd returns the pollable descriptor.
func (t *Timer) Fd() int { return t.fd }

// ArmOneshot schedules a single expiration after d, replacing any previous
// schedule. A pending unread expiration is discarded by the kernel.
func (t *Timer) ArmOneshot(d time.Duration) error {
	return t.settime(d, 0)
}

// ArmPeriodic schedules the first expiration after p and every p thereafter.
func (t *Timer) ArmPeriodic(p time.Duration) error {
	return t.settime(p, p)
}

// Disarm cancels any pending schedule.
func (t *Timer) Disarm() error {
	return t.settime(0, 0)
}

func (t *Timer) settime(initial, interval time.Duration) error {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(initial.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return api.WrapError(api.ErrCodeInternal, "timerfd settime", err)
	}
	return nil
}

// Ack reads and clears the accumulated expiration count. Zero means the
// timer had not expired (spurious wakeup or already acknowledged).
func (t *Timer) Ack() (uint64, error) {
	var buf [8]byte
	for {
		_, err := unix.Read(t.fd, buf[:])
		switch err {
		case nil:
			return binary.LittleEndian.Uint64(buf[:]), nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, nil
		default:
			return 0, api.WrapError(api.ErrCodeInternal, "timerfd read", err)
		}
	}
}

// Close releases the descriptor.
func (t *Timer) Close() error {
	return unix.Close(t.fd)
}
