//go:build linux
// +build linux

// File: internal/wakeup/wakeup_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package wakeup

import (
	"encoding/binary"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-waitset/api"
)

// Waker is a nonblocking eventfd. In counter mode a single read clears the
// whole accumulated count; in semaphore mode each read takes exactly one,
// which is what a per-event TryTakeOne needs.
type Waker struct {
	fd        int
	semaphore bool
}

// New creates a waker. semaphore selects EFD_SEMAPHORE read semantics.
func New(semaphore bool) (*Waker, error) {
	flags := unix.EFD_NONBLOCK | unix.EFD_CLOEXEC
	if semaphore {
		flags |= unix.EFD_SEMAPHORE
	}
	fd, err := unix.Eventfd(0, flags)
	if err != nil {
		return nil, api.WrapError(api.ErrCodeInsufficientResources, "eventfd", err)
	}
	return &Waker{fd: fd, semaphore: semaphore}, nil
}

// Fd returns the pollable descriptor.
func (w *Waker) Fd() int { return w.fd }

// Wake adds one to the counter, making the descriptor readable.
func (w *Waker) Wake() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(w.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			// Counter saturated; the fd is readable already.
			return nil
		}
		if err != nil {
			return api.WrapError(api.ErrCodeInternal, "eventfd write", err)
		}
		return nil
	}
}

// TakeOne consumes a single count. Returns false when nothing is pending.
// Only meaningful in semaphore mode; in counter mode it behaves like Drain.
func (w *Waker) TakeOne() (bool, error) {
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		switch err {
		case nil:
			return true, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return false, nil
		default:
			return false, api.WrapError(api.ErrCodeInternal, "eventfd read", err)
		}
	}
}

// Drain consumes pending counts until the descriptor is no longer readable.
func (w *Waker) Drain() error {
	for {
		ok, err := w.TakeOne()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if !w.semaphore {
			// Counter mode clears everything in one read.
			return nil
		}
	}
}

// Close releases the descriptor.
func (w *Waker) Close() error {
	return unix.Close(w.fd)
}
