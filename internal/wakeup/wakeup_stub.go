//go:build !linux
// +build !linux

// File: internal/wakeup/wakeup_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package wakeup

import "github.com/momentics/hioload-waitset/api"

// Waker is unavailable on this platform.
type Waker struct{}

// New returns an error for unsupported platforms.
func New(semaphore bool) (*Waker, error) {
	return nil, api.ErrNotSupported
}

func (w *Waker) Fd() int { return -1 }

func (w *Waker) Wake() error { return api.ErrNotSupported }

func (w *Waker) TakeOne() (bool, error) { return false, api.ErrNotSupported }

func (w *Waker) Drain() error { return api.ErrNotSupported }

func (w *Waker) Close() error { return nil }
